package review

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/imrishuroy/go-fraud-orderflow/internal/awsclients"
	"github.com/imrishuroy/go-fraud-orderflow/internal/orders"
)

// Request is the payload the pipeline enqueues when an order lands in
// PENDING_REVIEW, consumed by the fraud-review tooling.
type Request struct {
	OrderID string  `json:"order_id"`
	Status  string  `json:"status"`
	AIScore float64 `json:"ai_score"`
}

// Queue wraps an SQS client and the review queue URL.
type Queue struct {
	SQS      awsclients.SQSAPI
	QueueURL string
}

// NewQueue returns a Queue bound to a queue URL.
func NewQueue(sqsClient awsclients.SQSAPI, queueURL string) *Queue {
	return &Queue{
		SQS:      sqsClient,
		QueueURL: queueURL,
	}
}

// RequestReview enqueues a manual-review request for the order. Enqueueing
// is best-effort from the pipeline's point of view.
func (q *Queue) RequestReview(ctx context.Context, o *orders.Order) error {
	req := Request{OrderID: o.OrderID, Status: o.Status}
	if o.AIScore != nil {
		req.AIScore = *o.AIScore
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal review request: %w", err)
	}
	messageBody := string(body)

	input := &sqs.SendMessageInput{
		QueueUrl:    &q.QueueURL,
		MessageBody: &messageBody,
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"order_id": {
				DataType:    awsString("String"),
				StringValue: &o.OrderID,
			},
		},
	}

	if _, err := q.SQS.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("send review request: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
