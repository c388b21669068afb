package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dgallion1/slidedeck/internal/slides"
)

// Fetcher loads the slide document from a server or static host.
type Fetcher struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

func NewFetcher(baseURL string, timeout time.Duration, log *slog.Logger) *Fetcher {
	return &Fetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// FetchSlides issues a single GET for the slide document. Any failure is
// logged and yields an empty slice and nil metadata; callers treat that as
// "no slides".
func (f *Fetcher) FetchSlides(ctx context.Context) ([]slides.Slide, *slides.Metadata) {
	doc, err := f.fetch(ctx)
	if err != nil {
		f.log.Error("fetch slides failed", "url", f.baseURL+slides.EndpointPath, "error", err)
		return []slides.Slide{}, nil
	}
	if doc.Slides == nil {
		doc.Slides = []slides.Slide{}
	}
	return doc.Slides, doc.Metadata
}

func (f *Fetcher) fetch(ctx context.Context) (*slides.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+slides.EndpointPath, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get slides: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("get slides: status %d: %s", resp.StatusCode, string(body))
	}

	var doc slides.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode slides: %w", err)
	}
	return &doc, nil
}

// Close releases idle connections.
func (f *Fetcher) Close() {
	f.httpClient.CloseIdleConnections()
}
