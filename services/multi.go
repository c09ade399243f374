package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"stock-viewer/models"
)

// DefaultFetchConcurrency bounds parallel history requests in FetchMultiClose
const DefaultFetchConcurrency = 4

// FetchMultiClose fetches the close-only history of each symbol in parallel.
// The first failure cancels the remaining requests and is returned as is.
// Result order matches symbols.
func FetchMultiClose(ctx context.Context, provider MarketDataProvider, symbols []string, start, end time.Time, concurrency int) ([]models.CloseSeries, error) {
	if concurrency <= 0 {
		concurrency = DefaultFetchConcurrency
	}

	results := make([]models.CloseSeries, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, symbol := range symbols {
		g.Go(func() error {
			series, err := provider.GetHistory(gctx, symbol, start, end)
			if err != nil {
				return err
			}
			results[i] = models.CloseSeriesOf(series)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
