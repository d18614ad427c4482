package analytics

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// FinOpsReport combines order statistics, per-order cost estimates and the
// actual AWS bill for a period.
type FinOpsReport struct {
	ReportDate string `json:"reportDate"`
	Period     string `json:"period"` // Daily or Weekly

	Statistics

	ActualLambdaCost     float64 `json:"actualLambdaCost"`
	ActualDynamoDbCost   float64 `json:"actualDynamoDbCost"`
	ActualS3Cost         float64 `json:"actualS3Cost"`
	ActualBedrockCost    float64 `json:"actualBedrockCost"`
	ActualSnsCost        float64 `json:"actualSnsCost"`
	ActualApiGatewayCost float64 `json:"actualApiGatewayCost"`

	// EstimatedVsActualVariance is the percentage difference between summed
	// per-order estimates and the actual bill.
	EstimatedVsActualVariance float64 `json:"estimatedVsActualVariance"`
}

// ReportService builds FinOps reports from the stats service and Cost
// Explorer.
type ReportService struct {
	stats   *StatsService
	costs   *CostExplorer
	nowFunc func() time.Time
}

func NewReportService(stats *StatsService, costs *CostExplorer) *ReportService {
	return &ReportService{stats: stats, costs: costs, nowFunc: time.Now}
}

// Generate builds the report for [start, end]. Order statistics are
// authoritative and abort the report on failure; a Cost Explorer outage
// degrades to zero actuals rather than failing the report.
func (r *ReportService) Generate(ctx context.Context, start, end time.Time) (*FinOpsReport, error) {
	stats, err := r.stats.OrderStatistics(ctx, start, end)
	if err != nil {
		return nil, err
	}

	actuals, err := r.costs.ActualCosts(ctx, start, end)
	if err != nil {
		log.Warn().Err(err).Msg("cost explorer query failed, reporting zero actuals")
		actuals = map[string]float64{}
	}

	period := "Daily"
	if end.Sub(start) > 24*time.Hour {
		period = "Weekly"
	}

	report := &FinOpsReport{
		ReportDate:           r.nowFunc().UTC().Format("2006-01-02"),
		Period:               period,
		Statistics:           *stats,
		ActualLambdaCost:     actuals["actualLambdaCost"],
		ActualDynamoDbCost:   actuals["actualDynamoDbCost"],
		ActualS3Cost:         actuals["actualS3Cost"],
		ActualBedrockCost:    actuals["actualBedrockCost"],
		ActualSnsCost:        actuals["actualSnsCost"],
		ActualApiGatewayCost: actuals["actualApiGatewayCost"],
	}

	actualTotal := report.ActualLambdaCost + report.ActualDynamoDbCost + report.ActualS3Cost +
		report.ActualBedrockCost + report.ActualSnsCost + report.ActualApiGatewayCost
	if actualTotal > 0 {
		report.EstimatedVsActualVariance = (stats.TotalProcessingCost - actualTotal) / actualTotal * 100
	}

	return report, nil
}
