package metrics

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/imrishuroy/go-fraud-orderflow/internal/awsclients"
	"github.com/imrishuroy/go-fraud-orderflow/internal/cost"
)

// Namespace for per-order FinOps metrics.
const Namespace = "OrderProcessing/FinOps"

// Sink publishes per-order cost metrics to CloudWatch, dimensioned by order
// status so dashboards can split spend by outcome.
type Sink struct {
	client  awsclients.CloudWatchAPI
	nowFunc func() time.Time
}

func NewSink(client awsclients.CloudWatchAPI) *Sink {
	return &Sink{client: client, nowFunc: time.Now}
}

// Record publishes OrderProcessingCost, BedrockTokens, LambdaDuration and
// BedrockCost for one order. The pipeline swallows any error.
func (s *Sink) Record(ctx context.Context, orderID, status string, m cost.Metrics) error {
	now := s.nowFunc()
	dims := []cwtypes.Dimension{
		{Name: sdkaws.String("OrderStatus"), Value: sdkaws.String(status)},
	}

	data := []cwtypes.MetricDatum{
		{
			MetricName: sdkaws.String("OrderProcessingCost"),
			Value:      sdkaws.Float64(m.TotalProcessingCost),
			Unit:       cwtypes.StandardUnitNone,
			Timestamp:  sdkaws.Time(now),
			Dimensions: dims,
		},
		{
			MetricName: sdkaws.String("BedrockTokens"),
			Value:      sdkaws.Float64(float64(m.BedrockTokensUsed)),
			Unit:       cwtypes.StandardUnitCount,
			Timestamp:  sdkaws.Time(now),
			Dimensions: dims,
		},
		{
			MetricName: sdkaws.String("LambdaDuration"),
			Value:      sdkaws.Float64(float64(m.LambdaDurationMs)),
			Unit:       cwtypes.StandardUnitMilliseconds,
			Timestamp:  sdkaws.Time(now),
			Dimensions: dims,
		},
		{
			MetricName: sdkaws.String("BedrockCost"),
			Value:      sdkaws.Float64(m.BedrockCost),
			Unit:       cwtypes.StandardUnitNone,
			Timestamp:  sdkaws.Time(now),
			Dimensions: dims,
		},
	}

	_, err := s.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  sdkaws.String(Namespace),
		MetricData: data,
	})
	if err != nil {
		return fmt.Errorf("put metric data for order %s: %w", orderID, err)
	}
	return nil
}
