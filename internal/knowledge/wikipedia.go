package knowledge

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/rcliao/monchatbot/internal/chunker"
)

// WikipediaConfig configures the Wikipedia summary source.
type WikipediaConfig struct {
	// BaseURL overrides https://{Lang}.wikipedia.org/api/rest_v1.
	BaseURL   string
	Lang      string
	Sentences int
	Timeout   time.Duration
}

// Wikipedia fetches page summaries from the Wikipedia REST API.
type Wikipedia struct {
	baseURL   string
	sentences int
	client    *http.Client
	logger    *slog.Logger
}

// NewWikipedia creates a Wikipedia source. Lang defaults to "fr" and
// Sentences to 2.
func NewWikipedia(cfg WikipediaConfig, logger *slog.Logger) *Wikipedia {
	if logger == nil {
		logger = slog.Default()
	}
	lang := cfg.Lang
	if lang == "" {
		lang = "fr"
	}
	base := cfg.BaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.wikipedia.org/api/rest_v1", lang)
	}
	sentences := cfg.Sentences
	if sentences <= 0 {
		sentences = chunker.DefaultMaxSentences
	}
	return &Wikipedia{
		baseURL:   strings.TrimRight(base, "/"),
		sentences: sentences,
		client:    newHTTPClient(cfg.Timeout),
		logger:    logger,
	}
}

func (w *Wikipedia) Name() string { return "wikipedia" }

// Lookup returns the first sentences of the summary of the page titled query.
// Redirects are followed; disambiguation pages yield ErrDisambiguation and
// missing pages ErrNotFound.
func (w *Wikipedia) Lookup(ctx context.Context, query string) (string, error) {
	title := strings.TrimSpace(query)
	if title == "" {
		return "", ErrEmptyQuery
	}
	endpoint := w.baseURL + "/page/summary/" + url.PathEscape(strings.ReplaceAll(title, " ", "_")) + "?redirect=true"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("wikipedia request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("wikipedia %q: %w", title, ErrNotFound)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read wikipedia response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("wikipedia error %d: %s", resp.StatusCode, string(body))
	}

	doc := gjson.ParseBytes(body)
	if doc.Get("type").String() == "disambiguation" {
		return "", fmt.Errorf("wikipedia %q: %w", title, ErrDisambiguation)
	}
	extract := strings.TrimSpace(doc.Get("extract").String())
	if extract == "" {
		return "", fmt.Errorf("wikipedia %q: %w", title, ErrNotFound)
	}

	w.logger.Debug("wikipedia summary found", "title", doc.Get("title").String())
	return chunker.Trim(extract, chunker.Options{MaxSentences: w.sentences, MaxChars: chunker.DefaultMaxChars}), nil
}
