package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/imrishuroy/go-fraud-orderflow/internal/awsclients"
	"github.com/imrishuroy/go-fraud-orderflow/internal/orders"
)

// Publisher wraps an SNS client and a topic ARN.
type Publisher struct {
	client   awsclients.SNSAPI
	topicARN string
}

// NewPublisher returns a Publisher bound to a topic.
func NewPublisher(client awsclients.SNSAPI, topicARN string) *Publisher {
	return &Publisher{client: client, topicARN: topicARN}
}

// Publish sends the order outcome notification. Failures are reported to the
// caller, which treats them as best-effort.
func (p *Publisher) Publish(ctx context.Context, o *orders.Order) error {
	subject := fmt.Sprintf("Order %s - %s", o.OrderID, o.Status)
	message := buildMessage(o)

	_, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: &p.topicARN,
		Subject:  &subject,
		Message:  &message,
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}

func buildMessage(o *orders.Order) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Order ID: %s\n", o.OrderID)
	fmt.Fprintf(&sb, "Customer: %s\n", o.CustomerEmail)
	fmt.Fprintf(&sb, "Status: %s\n", o.Status)
	fmt.Fprintf(&sb, "Amount: $%.2f\n", o.TotalAmount)

	if o.AIScore != nil {
		fmt.Fprintf(&sb, "AI Score: %.1f/10\n", *o.AIScore)
	}

	if len(o.RejectionReasons) > 0 {
		sb.WriteString("\nRejection Reasons:\n")
		for _, reason := range o.RejectionReasons {
			fmt.Fprintf(&sb, "- %s\n", reason)
		}
	}

	if o.CostMetrics != nil {
		fmt.Fprintf(&sb, "\nProcessing Cost: $%.5f", o.CostMetrics.TotalProcessingCost)
	}

	return sb.String()
}
