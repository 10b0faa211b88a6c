package job

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/trace"
)

type CacheSweeper interface {
	ClearExpired(ctx context.Context)
}

// CacheMaintenance sweeps expired cache entries out of both tiers so lazily
// expired keys do not sit in Redis forever.
type CacheMaintenance struct {
	tracer   trace.Tracer
	sweeper  CacheSweeper
	interval time.Duration
}

func NewCacheMaintenance(tracer trace.Tracer, sweeper CacheSweeper, interval time.Duration) *CacheMaintenance {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &CacheMaintenance{
		tracer:   tracer,
		sweeper:  sweeper,
		interval: interval,
	}
}

func (j *CacheMaintenance) Start(ctx context.Context) {
	if j == nil || j.sweeper == nil {
		<-ctx.Done()
		return
	}

	log.Println("Cache maintenance starting...")
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Cache maintenance stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *CacheMaintenance) sweep(ctx context.Context) {
	if j.tracer != nil {
		_, span := j.tracer.Start(ctx, "cache-job.sweep")
		defer span.End()
	}
	j.sweeper.ClearExpired(ctx)
}
