// Package knowledge implements the outbound collaborators the chatbot asks
// when its own memory has no answer: Wikipedia summaries, Google Custom
// Search snippets, and an OpenAI-compatible generative model.
package knowledge

import (
	"context"
	"errors"
	"net/http"
	"time"
)

var (
	// ErrNotFound means the source answered but had nothing for the query.
	ErrNotFound = errors.New("no result")
	// ErrDisambiguation means the query names several distinct pages.
	ErrDisambiguation = errors.New("ambiguous query")
	// ErrEmptyQuery is returned for blank queries without calling out.
	ErrEmptyQuery = errors.New("empty query")
	// ErrDisabled means the source is missing the configuration it needs.
	ErrDisabled = errors.New("source disabled")
)

// Source answers a free-text query.
type Source interface {
	// Name identifies the source in logs and metrics.
	Name() string
	// Lookup returns a non-empty answer or an error.
	Lookup(ctx context.Context, query string) (string, error)
}

// DefaultTimeout bounds every outbound HTTP call.
const DefaultTimeout = 5 * time.Second

const userAgent = "monchatbot/1.0 (+https://github.com/rcliao/monchatbot)"

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// Outcome classifies a lookup result for metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "found"
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrEmptyQuery):
		return "not_found"
	case errors.Is(err, ErrDisambiguation):
		return "ambiguous"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}

// ObserveFunc receives the source name and Outcome of every lookup.
type ObserveFunc func(source, outcome string)

type observed struct {
	Source
	observe ObserveFunc
}

// Observed reports the outcome of every lookup of src to fn.
func Observed(src Source, fn ObserveFunc) Source {
	if fn == nil {
		return src
	}
	return &observed{Source: src, observe: fn}
}

func (o *observed) Lookup(ctx context.Context, query string) (string, error) {
	res, err := o.Source.Lookup(ctx, query)
	o.observe(o.Name(), Outcome(err))
	return res, err
}
