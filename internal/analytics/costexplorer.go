package analytics

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/imrishuroy/go-fraud-orderflow/internal/awsclients"
)

const ceDateLayout = "2006-01-02"

// CostExplorer answers "what did AWS actually bill" for the services the
// pipeline uses, as opposed to the per-order estimates stored with orders.
type CostExplorer struct {
	client  awsclients.CostExplorerAPI
	nowFunc func() time.Time
}

func NewCostExplorer(client awsclients.CostExplorerAPI) *CostExplorer {
	return &CostExplorer{client: client, nowFunc: time.Now}
}

// ActualCosts returns daily unblended costs in [start, end] grouped by
// service and mapped onto the pipeline's cost buckets. Values are rounded to
// 5 decimal places for presentation. All six keys are always present.
func (ce *CostExplorer) ActualCosts(ctx context.Context, start, end time.Time) (map[string]float64, error) {
	costs := map[string]float64{
		"actualLambdaCost":     0,
		"actualDynamoDbCost":   0,
		"actualS3Cost":         0,
		"actualBedrockCost":    0,
		"actualSnsCost":        0,
		"actualApiGatewayCost": 0,
	}

	// Cost Explorer requires the end date to be strictly after the start.
	adjustedEnd := end.AddDate(0, 0, 1)
	if adjustedEnd.Before(start.AddDate(0, 0, 1)) {
		adjustedEnd = start.AddDate(0, 0, 1)
	}

	out, err := ce.client.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
		TimePeriod: &cetypes.DateInterval{
			Start: sdkaws.String(start.Format(ceDateLayout)),
			End:   sdkaws.String(adjustedEnd.Format(ceDateLayout)),
		},
		Granularity: cetypes.GranularityDaily,
		Metrics:     []string{"UnblendedCost"},
		GroupBy: []cetypes.GroupDefinition{
			{
				Type: cetypes.GroupDefinitionTypeDimension,
				Key:  sdkaws.String("SERVICE"),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get cost and usage: %w", err)
	}

	for _, result := range out.ResultsByTime {
		for _, group := range result.Groups {
			if len(group.Keys) == 0 {
				continue
			}
			metric, ok := group.Metrics["UnblendedCost"]
			if !ok || metric.Amount == nil {
				continue
			}
			amount, err := strconv.ParseFloat(*metric.Amount, 64)
			if err != nil {
				continue
			}
			if bucket := serviceBucket(group.Keys[0]); bucket != "" {
				costs[bucket] += amount
			}
		}
	}

	for k, v := range costs {
		costs[k] = math.Round(v*100000) / 100000
	}

	return costs, nil
}

// Forecast returns the forecasted unblended cost for the next 30 days.
func (ce *CostExplorer) Forecast(ctx context.Context) (float64, error) {
	today := ce.nowFunc()
	out, err := ce.client.GetCostForecast(ctx, &costexplorer.GetCostForecastInput{
		TimePeriod: &cetypes.DateInterval{
			Start: sdkaws.String(today.Format(ceDateLayout)),
			End:   sdkaws.String(today.AddDate(0, 0, 30).Format(ceDateLayout)),
		},
		Metric:      cetypes.MetricUnblendedCost,
		Granularity: cetypes.GranularityMonthly,
	})
	if err != nil {
		return 0, fmt.Errorf("get cost forecast: %w", err)
	}
	if out.Total == nil || out.Total.Amount == nil {
		return 0, nil
	}
	amount, err := strconv.ParseFloat(*out.Total.Amount, 64)
	if err != nil {
		return 0, fmt.Errorf("parse forecast amount: %w", err)
	}
	return amount, nil
}

func serviceBucket(service string) string {
	switch {
	case strings.Contains(service, "Lambda"):
		return "actualLambdaCost"
	case strings.Contains(service, "DynamoDB"):
		return "actualDynamoDbCost"
	case strings.Contains(service, "S3"), strings.Contains(service, "Simple Storage"):
		return "actualS3Cost"
	case strings.Contains(service, "Bedrock"):
		return "actualBedrockCost"
	case strings.Contains(service, "SNS"), strings.Contains(service, "Simple Notification"):
		return "actualSnsCost"
	case strings.Contains(service, "API Gateway"):
		return "actualApiGatewayCost"
	default:
		return ""
	}
}
