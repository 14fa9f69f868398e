package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"meal-planner/internal/clipper"
	"meal-planner/internal/config"
	"meal-planner/internal/llm"
	"meal-planner/internal/metrics"
	"meal-planner/internal/planner"
	"meal-planner/internal/shopping"
)

// Wire builds an App on top of the SQLite repositories in db and the text
// generator selected by cfg. The returned func releases the generator.
func Wire(ctx context.Context, cfg *config.Config, db *sql.DB) (*App, *metrics.Store, func(), error) {
	textGen, err := llm.NewFromConfig(ctx, cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create text generator: %w", err)
	}
	release := func() {
		if c, ok := textGen.(llm.Closer); ok {
			if err := c.Close(); err != nil {
				log.Printf("Warning: failed to close text generator: %v", err)
			}
		}
	}

	metricsStore := metrics.NewStore(db)
	application := NewApp(
		cfg,
		planner.NewPlanRepository(db),
		shopping.NewRepository(db),
		planner.NewPlanner(textGen),
		clipper.NewClipper(textGen),
		metricsStore,
	)
	return application, metricsStore, release, nil
}
