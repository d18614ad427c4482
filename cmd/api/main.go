package main

import (
	"context"
	"net/http"
	"os"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/imrishuroy/go-fraud-orderflow/internal/archive"
	"github.com/imrishuroy/go-fraud-orderflow/internal/awsclients"
	"github.com/imrishuroy/go-fraud-orderflow/internal/cost"
	"github.com/imrishuroy/go-fraud-orderflow/internal/fraud"
	"github.com/imrishuroy/go-fraud-orderflow/internal/handlers"
	"github.com/imrishuroy/go-fraud-orderflow/internal/metrics"
	"github.com/imrishuroy/go-fraud-orderflow/internal/notify"
	"github.com/imrishuroy/go-fraud-orderflow/internal/orders"
	"github.com/imrishuroy/go-fraud-orderflow/internal/pipeline"
	"github.com/imrishuroy/go-fraud-orderflow/internal/review"
	"github.com/imrishuroy/go-fraud-orderflow/internal/validation"
)

const defaultModelID = "anthropic.claude-3-haiku-20240307-v1:0"

func setupRouter(proc *pipeline.Processor) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterOrdersRoutes(r, proc)

	return r
}

func memoryMB() int32 {
	v := os.Getenv("LAMBDA_MEMORY_MB")
	if v == "" {
		return 512
	}
	mb, err := strconv.ParseInt(v, 10, 32)
	if err != nil || mb <= 0 {
		log.Warn().Str("LAMBDA_MEMORY_MB", v).Msg("unparsable memory setting, using 512")
		return 512
	}
	return int32(mb)
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.With().Str("service", "order-intake-api").Logger()

	clients, err := awsclients.NewAWSClients(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init aws clients")
	}

	modelID := os.Getenv("BEDROCK_MODEL_ID")
	if modelID == "" {
		modelID = defaultModelID
	}

	cfg := pipeline.Config{
		Validator: validation.New(),
		Analyzer:  fraud.NewAnalyzer(fraud.NewBedrockInvoker(clients.Bedrock, modelID)),
		Costs:     cost.NewCalculator(cost.RatesFromEnv()),
		Store:     orders.NewStore(clients.DynamoDB, os.Getenv("ORDERS_TABLE")),
		Archive:   archive.NewWriter(clients.S3, os.Getenv("ARCHIVE_BUCKET")),
		Notify:    notify.NewPublisher(clients.SNS, os.Getenv("NOTIFY_TOPIC_ARN")),
		Metrics:   metrics.NewSink(clients.CloudWatch),
		MemoryMB:  memoryMB(),
	}
	if queueURL := os.Getenv("REVIEW_QUEUE_URL"); queueURL != "" {
		cfg.Review = review.NewQueue(clients.SQS, queueURL)
	}

	r := setupRouter(pipeline.New(cfg))

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":8080"
		log.Info().Str("addr", addr).Msg("running local server")
		if err := r.Run(addr); err != nil {
			log.Fatal().Err(err).Msg("failed to run local server")
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
