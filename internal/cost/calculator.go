package cost

import (
	"os"
	"strconv"
)

// Rates holds the per-unit prices the calculator charges against. Defaults
// mirror AWS us-east-1 list prices (2024); deployments override them through
// RATE_* environment variables.
type Rates struct {
	BedrockPer1KTokens      float64 // per 1K input+output tokens
	LambdaPerGBSecond       float64
	DynamoDBWritePerMillion float64
	S3PutPer1KRequests      float64
	SNSPerMillion           float64
	APIGatewayPerMillion    float64
}

// DefaultRates returns the built-in us-east-1 pricing.
func DefaultRates() Rates {
	return Rates{
		BedrockPer1KTokens:      0.003,
		LambdaPerGBSecond:       0.0000166667,
		DynamoDBWritePerMillion: 1.25,
		S3PutPer1KRequests:      0.005,
		SNSPerMillion:           0.50,
		APIGatewayPerMillion:    3.50,
	}
}

// RatesFromEnv returns DefaultRates with any RATE_* environment overrides
// applied. Unset or unparsable variables keep the default.
func RatesFromEnv() Rates {
	r := DefaultRates()
	override(&r.BedrockPer1KTokens, "RATE_BEDROCK_PER_1K_TOKENS")
	override(&r.LambdaPerGBSecond, "RATE_LAMBDA_PER_GB_SECOND")
	override(&r.DynamoDBWritePerMillion, "RATE_DYNAMODB_WRITE_PER_MILLION")
	override(&r.S3PutPer1KRequests, "RATE_S3_PUT_PER_1K_REQUESTS")
	override(&r.SNSPerMillion, "RATE_SNS_PER_MILLION")
	override(&r.APIGatewayPerMillion, "RATE_API_GATEWAY_PER_MILLION")
	return r
}

func override(dst *float64, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return
	}
	*dst = f
}

// Metrics is the per-order cost breakdown. TotalProcessingCost is always the
// exact sum of the six cost components; no rounding happens here, display
// rounding belongs to presentation boundaries.
type Metrics struct {
	BedrockTokensUsed   int32   `json:"bedrockTokensUsed"`
	BedrockCost         float64 `json:"bedrockCost"`
	LambdaDurationMs    int64   `json:"lambdaDurationMs"`
	LambdaCost          float64 `json:"lambdaCost"`
	DynamoDBWriteUnits  int     `json:"dynamodbWriteUnits"`
	DynamoDBCost        float64 `json:"dynamodbCost"`
	S3PutRequests       int     `json:"s3PutRequests"`
	S3Cost              float64 `json:"s3Cost"`
	SNSNotifications    int     `json:"snsNotifications"`
	SNSCost             float64 `json:"snsCost"`
	APIGatewayCalls     int     `json:"apiGatewayCalls"`
	APIGatewayCost      float64 `json:"apiGatewayCost"`
	TotalProcessingCost float64 `json:"totalProcessingCost"`
}

// Calculator computes deterministic per-order cost breakdowns. It is pure:
// identical inputs always yield identical Metrics.
type Calculator struct {
	rates Rates
}

func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Compute charges one structured-store write, one archive PUT, one
// notification and one gateway call at fixed rates, plus token-metered AI
// cost and duration×memory compute cost. aiTokens is 0 when the model was
// never invoked (validation failures).
func (c *Calculator) Compute(durationMs int64, memoryMB int32, aiTokens int32) Metrics {
	m := Metrics{
		BedrockTokensUsed:  aiTokens,
		LambdaDurationMs:   durationMs,
		DynamoDBWriteUnits: 1,
		S3PutRequests:      1,
		SNSNotifications:   1,
		APIGatewayCalls:    1,
	}

	m.BedrockCost = float64(aiTokens) / 1000.0 * c.rates.BedrockPer1KTokens

	gbSeconds := (float64(memoryMB) / 1024.0) * (float64(durationMs) / 1000.0)
	m.LambdaCost = gbSeconds * c.rates.LambdaPerGBSecond

	m.DynamoDBCost = c.rates.DynamoDBWritePerMillion / 1_000_000
	m.S3Cost = c.rates.S3PutPer1KRequests / 1_000
	m.SNSCost = c.rates.SNSPerMillion / 1_000_000
	m.APIGatewayCost = c.rates.APIGatewayPerMillion / 1_000_000

	m.TotalProcessingCost = m.BedrockCost + m.LambdaCost + m.DynamoDBCost +
		m.S3Cost + m.SNSCost + m.APIGatewayCost

	return m
}
