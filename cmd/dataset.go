package main

import (
	"context"

	"github.com/sells-group/aq-dashboard/internal/config"
	"github.com/sells-group/aq-dashboard/internal/dataset"
	"github.com/sells-group/aq-dashboard/internal/fetcher"
)

// loadDataset fetches and parses the configured dataset source.
func loadDataset(ctx context.Context, c *config.Config) (*dataset.Dataset, error) {
	if err := c.Validate("load"); err != nil {
		return nil, err
	}
	router := fetcher.NewRouter(fetcher.Options{
		UserAgent: c.Dataset.UserAgent,
		Timeout:   c.Dataset.FetchTimeout(),
	})
	return dataset.Load(ctx, router, c.Dataset.URL, dataset.OptionsFromConfig(c.Dataset))
}
