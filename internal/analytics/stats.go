package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/imrishuroy/go-fraud-orderflow/internal/orders"
)

// OrderReader is the slice of the order store the analytics side needs.
type OrderReader interface {
	QueryByStatus(ctx context.Context, status string, from, to time.Time) ([]orders.Order, error)
}

// Statistics aggregates persisted order outcomes and their estimated cost
// components over a time range.
type Statistics struct {
	TotalOrders         int     `json:"totalOrders"`
	ApprovedOrders      int     `json:"approvedOrders"`
	RejectedOrders      int     `json:"rejectedOrders"`
	PendingReviewOrders int     `json:"pendingReviewOrders"`
	TotalProcessingCost float64 `json:"totalProcessingCost"`
	BedrockCost         float64 `json:"bedrockCost"`
	LambdaCost          float64 `json:"lambdaCost"`
	DynamoDBCost        float64 `json:"dynamoDbCost"`
	S3Cost              float64 `json:"s3Cost"`
	SNSCost             float64 `json:"snsCost"`
	APIGatewayCost      float64 `json:"apiGatewayCost"`
}

// StatsService scans stored orders through the status+time index.
type StatsService struct {
	store OrderReader
}

func NewStatsService(store OrderReader) *StatsService {
	return &StatsService{store: store}
}

// OrderStatistics counts decided orders per status in [start, end] and sums
// the cost components recorded with them.
func (s *StatsService) OrderStatistics(ctx context.Context, start, end time.Time) (*Statistics, error) {
	stats := &Statistics{}

	counts := map[string]*int{
		orders.StatusApproved:      &stats.ApprovedOrders,
		orders.StatusRejected:      &stats.RejectedOrders,
		orders.StatusPendingReview: &stats.PendingReviewOrders,
	}

	for status, counter := range counts {
		list, err := s.store.QueryByStatus(ctx, status, start, end)
		if err != nil {
			return nil, fmt.Errorf("query %s orders: %w", status, err)
		}
		*counter = len(list)

		for _, o := range list {
			if o.CostMetrics == nil {
				continue
			}
			m := o.CostMetrics
			stats.TotalProcessingCost += m.TotalProcessingCost
			stats.BedrockCost += m.BedrockCost
			stats.LambdaCost += m.LambdaCost
			stats.DynamoDBCost += m.DynamoDBCost
			stats.S3Cost += m.S3Cost
			stats.SNSCost += m.SNSCost
			stats.APIGatewayCost += m.APIGatewayCost
		}
	}

	stats.TotalOrders = stats.ApprovedOrders + stats.RejectedOrders + stats.PendingReviewOrders
	return stats, nil
}
