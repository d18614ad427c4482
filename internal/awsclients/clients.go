package awsclients

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// AWSClients bundles all service clients for convenience.
type AWSClients struct {
	DynamoDB     DynamoDBAPI
	S3           S3API
	SNS          SNSAPI
	SQS          SQSAPI
	CloudWatch   CloudWatchAPI
	Bedrock      BedrockRuntimeAPI
	CostExplorer CostExplorerAPI
}

// NewAWSClients loads AWS config and returns concrete service clients that implement our interfaces.
func NewAWSClients(ctx context.Context) (*AWSClients, error) {
	cfg, err := LoadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}

	return &AWSClients{
		DynamoDB:     dynamodb.NewFromConfig(cfg),
		S3:           s3.NewFromConfig(cfg),
		SNS:          sns.NewFromConfig(cfg),
		SQS:          sqs.NewFromConfig(cfg),
		CloudWatch:   cloudwatch.NewFromConfig(cfg),
		Bedrock:      bedrockruntime.NewFromConfig(cfg),
		CostExplorer: costexplorer.NewFromConfig(cfg),
	}, nil
}
