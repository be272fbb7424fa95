package pipeline

import (
	"context"

	"go-card-grader/pkg/models"
)

// MarketClient is the external market research collaborator. Price
// lookup lives outside this service; the pipeline only invokes it as
// the terminal stage when one is configured.
type MarketClient interface {
	Lookup(ctx context.Context, details models.CardDetails) (*models.MarketEstimate, error)
}
