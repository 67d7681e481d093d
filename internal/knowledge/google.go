package knowledge

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/rcliao/monchatbot/internal/chunker"
)

const defaultGoogleEndpoint = "https://www.googleapis.com/customsearch/v1"

// minParagraphRunes is the shortest page line accepted as a summary.
const minParagraphRunes = 60

// GoogleConfig configures the Google Custom Search source.
type GoogleConfig struct {
	APIKey   string
	CX       string
	Endpoint string
	Lang     string
	Results  int
	Timeout  time.Duration
	// RatePerMinute caps outbound search API calls; 0 disables the limit.
	RatePerMinute int
}

// Google answers a query with the first readable paragraph of the top
// Custom Search results, falling back to the API snippet.
type Google struct {
	apiKey   string
	cx       string
	endpoint string
	lang     string
	results  int
	client   *http.Client
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// NewGoogle creates a Google source. It returns ErrDisabled when the API
// key or engine id is missing.
func NewGoogle(cfg GoogleConfig, logger *slog.Logger) (*Google, error) {
	if cfg.APIKey == "" || cfg.CX == "" {
		return nil, fmt.Errorf("google search requires api_key and cx: %w", ErrDisabled)
	}
	if logger == nil {
		logger = slog.Default()
	}
	g := &Google{
		apiKey:   cfg.APIKey,
		cx:       cfg.CX,
		endpoint: cfg.Endpoint,
		lang:     cfg.Lang,
		results:  cfg.Results,
		client:   newHTTPClient(cfg.Timeout),
		logger:   logger,
	}
	if g.endpoint == "" {
		g.endpoint = defaultGoogleEndpoint
	}
	if g.lang == "" {
		g.lang = "fr"
	}
	if g.results <= 0 || g.results > 10 {
		g.results = 3
	}
	if cfg.RatePerMinute > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(float64(cfg.RatePerMinute)/60), 1)
	}
	return g, nil
}

func (g *Google) Name() string { return "google" }

type searchHit struct {
	link    string
	snippet string
}

// Lookup runs the search and returns "<paragraph>\n(Source : <url>)".
func (g *Google) Lookup(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}

	hits, err := g.search(ctx, query)
	if err != nil {
		return "", err
	}
	if len(hits) == 0 {
		g.logger.Warn("no google results", "query", query)
		return "", fmt.Errorf("google %q: %w", query, ErrNotFound)
	}

	for _, hit := range hits {
		text, err := g.readParagraph(ctx, hit.link)
		if err != nil {
			g.logger.Warn("google result unreadable", "url", hit.link, "error", err)
			continue
		}
		if text != "" {
			g.logger.Info("google summary found", "url", hit.link)
			return formatSourced(text, hit.link), nil
		}
	}

	for _, hit := range hits {
		if s := strings.TrimSpace(hit.snippet); s != "" {
			return formatSourced(s, hit.link), nil
		}
	}
	return "", fmt.Errorf("google %q: no usable content: %w", query, ErrNotFound)
}

func formatSourced(text, link string) string {
	return fmt.Sprintf("%s\n(Source : %s)", text, link)
}

func (g *Google) search(ctx context.Context, query string) ([]searchHit, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("google rate limit: %w", err)
		}
	}

	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.cx)
	params.Set("q", query)
	params.Set("lr", "lang_"+g.lang)
	params.Set("hl", g.lang)
	params.Set("num", strconv.Itoa(g.results))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read google response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google error %d: %s", resp.StatusCode, gjson.GetBytes(body, "error.message").String())
	}

	var hits []searchHit
	gjson.GetBytes(body, "items").ForEach(func(_, item gjson.Result) bool {
		link := item.Get("link").String()
		if link != "" {
			hits = append(hits, searchHit{link: link, snippet: item.Get("snippet").String()})
		}
		return len(hits) < g.results
	})
	return hits, nil
}

// readParagraph fetches a result page and extracts its first meaningful
// paragraph with readability.
func (g *Google) readParagraph(ctx context.Context, link string) (string, error) {
	pageURL, err := url.Parse(link)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body, 2<<20), pageURL)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}
	paragraph := chunker.FirstParagraph(article.TextContent, minParagraphRunes)
	return chunker.Trim(paragraph, chunker.Options{MaxChars: chunker.DefaultMaxChars}), nil
}
