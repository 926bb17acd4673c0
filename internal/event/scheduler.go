package event

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// MaterializeScheduler runs the materializer on a fixed cadence so
// recurring definitions keep a fresh instance horizon without any request
// traffic.
type MaterializeScheduler struct {
	cron         *cron.Cron
	materializer *Materializer
}

// NewMaterializeScheduler creates a scheduler around the materializer.
func NewMaterializeScheduler(materializer *Materializer) *MaterializeScheduler {
	return &MaterializeScheduler{
		cron:         cron.New(cron.WithSeconds()),
		materializer: materializer,
	}
}

// Start begins the scheduler and performs one immediate pass so a fresh
// process serves materialized instances right away.
func (s *MaterializeScheduler) Start(ctx context.Context) {
	log.Println("Starting materialize scheduler...")

	if err := s.materializer.MaterializeAll(ctx); err != nil {
		log.Printf("Warning: initial materialize pass failed: %v", err)
	}

	s.cron.AddFunc("@every 5m", func() {
		if err := s.materializer.MaterializeAll(context.Background()); err != nil {
			log.Printf("Materialize pass failed: %v", err)
		}
	})

	s.cron.Start()
	log.Println("Materialize scheduler started")
}

// Stop gracefully shuts down the scheduler, waiting for a running pass.
func (s *MaterializeScheduler) Stop() {
	log.Println("Stopping materialize scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Materialize scheduler stopped")
}
