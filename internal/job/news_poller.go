package job

import (
	"context"
	"log"
	"time"

	"copytrader/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// NewsPoller keeps the news cache warm so API reads rarely pay the upstream
// round trip.
type NewsPoller struct {
	tracer   trace.Tracer
	news     NewsFetcher
	interval time.Duration
}

type NewsFetcher interface {
	GetNews(ctx context.Context, forceRefresh bool) ([]domain.NewsArticle, error)
}

func NewNewsPoller(tracer trace.Tracer, news NewsFetcher, interval time.Duration) *NewsPoller {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &NewsPoller{
		tracer:   tracer,
		news:     news,
		interval: interval,
	}
}

// Start refreshes the cache on a fixed cadence. Blocks until ctx is cancelled.
func (p *NewsPoller) Start(ctx context.Context) {
	if p.news == nil {
		log.Println("News poller disabled: no news service")
		<-ctx.Done()
		return
	}

	log.Println("News poller starting...")
	p.refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("News poller stopped")
			return
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

func (p *NewsPoller) refresh(ctx context.Context) {
	if p.tracer != nil {
		_, span := p.tracer.Start(ctx, "news-job.refresh")
		defer span.End()
	}
	articles, err := p.news.GetNews(ctx, true)
	if err != nil {
		log.Printf("news refresh error: %v", err)
		return
	}
	log.Printf("news refresh cached %d article(s)", len(articles))
}
