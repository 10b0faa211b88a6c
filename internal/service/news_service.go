package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"copytrader/internal/cache"
	"copytrader/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const (
	newsCacheKey      = "news:all"
	newsCacheTTL      = 5 * time.Minute
	breakingNewsAge   = 2 * time.Hour
	highImpactKeyword = "high"
)

type NewsProvider interface {
	FetchNews(ctx context.Context) ([]domain.NewsArticle, error)
}

type NewsService struct {
	tracer   trace.Tracer
	cache    *cache.Cache
	provider NewsProvider
	now      func() time.Time
}

func NewNewsService(tracer trace.Tracer, c *cache.Cache, provider NewsProvider) *NewsService {
	return &NewsService{
		tracer:   tracer,
		cache:    c,
		provider: provider,
		now:      time.Now,
	}
}

// GetNews serves headlines through the cache. Expired entries are still
// returned when the upstream feed is down or the process is offline.
func (s *NewsService) GetNews(ctx context.Context, forceRefresh bool) ([]domain.NewsArticle, error) {
	_, span := s.tracer.Start(ctx, "news-service.get-news")
	defer span.End()

	if s.cache == nil || s.provider == nil {
		return nil, fmt.Errorf("news service is not fully initialized")
	}

	return cache.GetWithFallback(ctx, s.cache, newsCacheKey, s.provider.FetchNews, cache.FallbackOptions{
		TTL:          newsCacheTTL,
		ForceRefresh: forceRefresh,
	})
}

// BreakingNews narrows GetNews to high-impact articles published recently.
func (s *NewsService) BreakingNews(ctx context.Context) ([]domain.NewsArticle, error) {
	_, span := s.tracer.Start(ctx, "news-service.breaking-news")
	defer span.End()

	articles, err := s.GetNews(ctx, false)
	if err != nil {
		return nil, err
	}

	cutoff := s.now().UTC().Add(-breakingNewsAge)
	breaking := make([]domain.NewsArticle, 0, len(articles))
	for _, a := range articles {
		if !strings.EqualFold(a.Impact, highImpactKeyword) {
			continue
		}
		if a.PublishedAt.Before(cutoff) {
			continue
		}
		breaking = append(breaking, a)
	}
	return breaking, nil
}

// NewsForCurrency keeps articles tagged with the given currency code.
func (s *NewsService) NewsForCurrency(ctx context.Context, currency string) ([]domain.NewsArticle, error) {
	_, span := s.tracer.Start(ctx, "news-service.news-for-currency")
	defer span.End()

	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return nil, fmt.Errorf("currency is required")
	}

	articles, err := s.GetNews(ctx, false)
	if err != nil {
		return nil, err
	}

	matched := make([]domain.NewsArticle, 0, len(articles))
	for _, a := range articles {
		for _, c := range a.Currencies {
			if strings.EqualFold(c, currency) {
				matched = append(matched, a)
				break
			}
		}
	}
	return matched, nil
}
