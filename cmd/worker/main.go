package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/imrishuroy/go-fraud-orderflow/internal/awsclients"
	"github.com/imrishuroy/go-fraud-orderflow/internal/notify"
	"github.com/imrishuroy/go-fraud-orderflow/internal/orders"
	"github.com/imrishuroy/go-fraud-orderflow/internal/review"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.With().Str("service", "review-worker").Logger()

	clients, err := awsclients.NewAWSClients(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init aws clients")
	}

	store := orders.NewStore(clients.DynamoDB, os.Getenv("ORDERS_TABLE"))
	notifier := notify.NewPublisher(clients.SNS, os.Getenv("NOTIFY_TOPIC_ARN"))
	proc := review.NewProcessor(store, notifier)

	// If RUN_LOCAL=true, simulate a single SQS event for local testing.
	if os.Getenv("RUN_LOCAL") == "true" {
		testBody := os.Getenv("LOCAL_SQS_BODY")
		if testBody == "" {
			testBody = `{"order_id":"local-order-1","decision":"APPROVE","reviewer":"local"}`
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{
				{Body: testBody},
			},
		}
		if err := proc.Handle(context.Background(), event); err != nil {
			log.Fatal().Err(err).Msg("local handler error")
		}
		return
	}

	lambda.Start(proc.Handle)
}
