package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"copytrader/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// NewsAPIProvider fetches forex headlines from an external aggregation
// endpoint. The endpoint is an opaque collaborator; this client only shapes
// the request and decodes the payload.
type NewsAPIProvider struct {
	tracer  trace.Tracer
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewNewsAPIProvider(tracer trace.Tracer, baseURL, apiKey string, timeout time.Duration) *NewsAPIProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NewsAPIProvider{
		tracer:  tracer,
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

func (p *NewsAPIProvider) FetchNews(ctx context.Context) ([]domain.NewsArticle, error) {
	ctx, span := p.tracer.Start(ctx, "news-provider.fetch-news")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/forex-news", nil)
	if err != nil {
		return nil, err
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch news: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news endpoint returned status %d", resp.StatusCode)
	}

	var payload struct {
		Articles []domain.NewsArticle `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode news payload: %w", err)
	}
	return payload.Articles, nil
}
