package analytics

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	"github.com/imrishuroy/go-fraud-orderflow/internal/cost"
	"github.com/imrishuroy/go-fraud-orderflow/internal/orders"
)

type fakeOrderReader struct {
	byStatus map[string][]orders.Order
	err      error
}

func (f *fakeOrderReader) QueryByStatus(_ context.Context, status string, _, _ time.Time) ([]orders.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byStatus[status], nil
}

type fakeCostExplorerAPI struct {
	usageOut    *costexplorer.GetCostAndUsageOutput
	usageErr    error
	usageInput  *costexplorer.GetCostAndUsageInput
	forecastOut *costexplorer.GetCostForecastOutput
	forecastErr error
}

func (f *fakeCostExplorerAPI) GetCostAndUsage(_ context.Context, params *costexplorer.GetCostAndUsageInput, _ ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error) {
	f.usageInput = params
	if f.usageErr != nil {
		return nil, f.usageErr
	}
	return f.usageOut, nil
}

func (f *fakeCostExplorerAPI) GetCostForecast(_ context.Context, params *costexplorer.GetCostForecastInput, _ ...func(*costexplorer.Options)) (*costexplorer.GetCostForecastOutput, error) {
	if f.forecastErr != nil {
		return nil, f.forecastErr
	}
	return f.forecastOut, nil
}

func costedOrder(id string, total float64) orders.Order {
	return orders.Order{
		OrderID: id,
		CostMetrics: &cost.Metrics{
			BedrockCost:         total / 2,
			LambdaCost:          total / 2,
			TotalProcessingCost: total,
		},
	}
}

func TestOrderStatistics(t *testing.T) {
	reader := &fakeOrderReader{byStatus: map[string][]orders.Order{
		orders.StatusApproved:      {costedOrder("a1", 0.010), costedOrder("a2", 0.020)},
		orders.StatusRejected:      {costedOrder("r1", 0.004)},
		orders.StatusPendingReview: {{OrderID: "p1"}}, // no cost metrics recorded
	}}
	svc := NewStatsService(reader)

	stats, err := svc.OrderStatistics(context.Background(), time.Now().AddDate(0, 0, -1), time.Now())
	if err != nil {
		t.Fatalf("OrderStatistics: %v", err)
	}

	if stats.TotalOrders != 4 {
		t.Errorf("TotalOrders = %d, want 4", stats.TotalOrders)
	}
	if stats.ApprovedOrders != 2 || stats.RejectedOrders != 1 || stats.PendingReviewOrders != 1 {
		t.Errorf("counts = %d/%d/%d, want 2/1/1",
			stats.ApprovedOrders, stats.RejectedOrders, stats.PendingReviewOrders)
	}
	if math.Abs(stats.TotalProcessingCost-0.034) > 1e-9 {
		t.Errorf("TotalProcessingCost = %v, want 0.034", stats.TotalProcessingCost)
	}
	if math.Abs(stats.BedrockCost-0.017) > 1e-9 {
		t.Errorf("BedrockCost = %v, want 0.017", stats.BedrockCost)
	}
}

func TestOrderStatisticsQueryError(t *testing.T) {
	svc := NewStatsService(&fakeOrderReader{err: errors.New("throttled")})
	if _, err := svc.OrderStatistics(context.Background(), time.Now(), time.Now()); err == nil {
		t.Fatal("expected error from failing store query")
	}
}

func usageGroup(service, amount string) cetypes.Group {
	return cetypes.Group{
		Keys: []string{service},
		Metrics: map[string]cetypes.MetricValue{
			"UnblendedCost": {Amount: sdkaws.String(amount)},
		},
	}
}

func TestActualCostsBucketsByService(t *testing.T) {
	api := &fakeCostExplorerAPI{usageOut: &costexplorer.GetCostAndUsageOutput{
		ResultsByTime: []cetypes.ResultByTime{
			{Groups: []cetypes.Group{
				usageGroup("AWS Lambda", "0.12345"),
				usageGroup("Amazon DynamoDB", "0.5"),
				usageGroup("Amazon Simple Storage Service", "0.0301"),
			}},
			{Groups: []cetypes.Group{
				usageGroup("AWS Lambda", "0.1"),
				usageGroup("Amazon Bedrock", "1.25"),
				usageGroup("Amazon Simple Notification Service", "0.002"),
				usageGroup("Amazon API Gateway", "0.07"),
				usageGroup("Amazon Elastic Compute Cloud", "99.0"), // outside the pipeline
			}},
		},
	}}
	ce := NewCostExplorer(api)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 7, 0, 0, 0, 0, time.UTC)
	costs, err := ce.ActualCosts(context.Background(), start, end)
	if err != nil {
		t.Fatalf("ActualCosts: %v", err)
	}

	want := map[string]float64{
		"actualLambdaCost":     0.22345,
		"actualDynamoDbCost":   0.5,
		"actualS3Cost":         0.0301,
		"actualBedrockCost":    1.25,
		"actualSnsCost":        0.002,
		"actualApiGatewayCost": 0.07,
	}
	for k, v := range want {
		if math.Abs(costs[k]-v) > 1e-9 {
			t.Errorf("%s = %v, want %v", k, costs[k], v)
		}
	}

	// The query window must end strictly after it starts.
	if got := sdkaws.ToString(api.usageInput.TimePeriod.End); got != "2026-08-08" {
		t.Errorf("query end = %s, want 2026-08-08", got)
	}
}

func TestServiceBucketFullServiceNames(t *testing.T) {
	// Cost Explorer's SERVICE dimension uses full product names, not the
	// short acronyms dashboards display.
	cases := map[string]string{
		"AWS Lambda":                         "actualLambdaCost",
		"Amazon DynamoDB":                    "actualDynamoDbCost",
		"Amazon Simple Storage Service":      "actualS3Cost",
		"Amazon Bedrock":                     "actualBedrockCost",
		"Amazon Simple Notification Service": "actualSnsCost",
		"Amazon API Gateway":                 "actualApiGatewayCost",
		"Amazon Elastic Compute Cloud":       "",
	}
	for service, want := range cases {
		if got := serviceBucket(service); got != want {
			t.Errorf("serviceBucket(%q) = %q, want %q", service, got, want)
		}
	}
}

func TestActualCostsSingleDayWindow(t *testing.T) {
	api := &fakeCostExplorerAPI{usageOut: &costexplorer.GetCostAndUsageOutput{}}
	ce := NewCostExplorer(api)

	day := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	costs, err := ce.ActualCosts(context.Background(), day, day)
	if err != nil {
		t.Fatalf("ActualCosts: %v", err)
	}
	if got := sdkaws.ToString(api.usageInput.TimePeriod.End); got != "2026-09-01" {
		t.Errorf("query end = %s, want 2026-09-01", got)
	}
	if len(costs) != 6 {
		t.Errorf("expected all six buckets present, got %d", len(costs))
	}
}

func TestForecast(t *testing.T) {
	api := &fakeCostExplorerAPI{forecastOut: &costexplorer.GetCostForecastOutput{
		Total: &cetypes.MetricValue{Amount: sdkaws.String("42.5")},
	}}
	ce := NewCostExplorer(api)

	got, err := ce.Forecast(context.Background())
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if got != 42.5 {
		t.Errorf("Forecast = %v, want 42.5", got)
	}
}

func TestGenerateReportVariance(t *testing.T) {
	reader := &fakeOrderReader{byStatus: map[string][]orders.Order{
		orders.StatusApproved: {costedOrder("a1", 1.5)},
	}}
	api := &fakeCostExplorerAPI{usageOut: &costexplorer.GetCostAndUsageOutput{
		ResultsByTime: []cetypes.ResultByTime{
			{Groups: []cetypes.Group{usageGroup("AWS Lambda", "1.0")}},
		},
	}}
	svc := NewReportService(NewStatsService(reader), NewCostExplorer(api))
	svc.nowFunc = func() time.Time { return time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC) }

	day := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	report, err := svc.Generate(context.Background(), day, day)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if report.ReportDate != "2026-09-01" {
		t.Errorf("ReportDate = %s, want 2026-09-01", report.ReportDate)
	}
	if report.Period != "Daily" {
		t.Errorf("Period = %s, want Daily", report.Period)
	}
	// estimated 1.5 vs actual 1.0 billed: 50% over.
	if math.Abs(report.EstimatedVsActualVariance-50) > 1e-9 {
		t.Errorf("variance = %v, want 50", report.EstimatedVsActualVariance)
	}
}

func TestGenerateReportCostExplorerOutage(t *testing.T) {
	reader := &fakeOrderReader{byStatus: map[string][]orders.Order{
		orders.StatusApproved: {costedOrder("a1", 0.5)},
	}}
	api := &fakeCostExplorerAPI{usageErr: errors.New("access denied")}
	svc := NewReportService(NewStatsService(reader), NewCostExplorer(api))

	now := time.Now().UTC()
	report, err := svc.Generate(context.Background(), now.AddDate(0, 0, -7), now)
	if err != nil {
		t.Fatalf("Generate should degrade, got %v", err)
	}
	if report.Period != "Weekly" {
		t.Errorf("Period = %s, want Weekly", report.Period)
	}
	if report.ActualLambdaCost != 0 || report.EstimatedVsActualVariance != 0 {
		t.Errorf("expected zeroed actuals on outage, got %+v", report)
	}
	if report.TotalOrders != 1 {
		t.Errorf("TotalOrders = %d, want 1", report.TotalOrders)
	}
}
