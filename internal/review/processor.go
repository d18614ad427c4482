package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog/log"

	"github.com/imrishuroy/go-fraud-orderflow/internal/orders"
)

// Verdict is the payload the review tooling posts when a human resolves a
// PENDING_REVIEW order.
type Verdict struct {
	OrderID  string `json:"order_id"`
	Decision string `json:"decision"` // APPROVE | REJECT
	Reviewer string `json:"reviewer"`
	Note     string `json:"note,omitempty"`
}

// Notifier publishes the final outcome after a review verdict is applied.
type Notifier interface {
	Publish(ctx context.Context, o *orders.Order) error
}

// Processor consumes reviewer verdicts from SQS and applies them to stored
// orders as conditional PENDING_REVIEW -> APPROVED/REJECTED transitions.
type Processor struct {
	store    *orders.Store
	notifier Notifier
}

func NewProcessor(store *orders.Store, notifier Notifier) *Processor {
	return &Processor{store: store, notifier: notifier}
}

// Handle receives an SQS batch event and processes each verdict. A returned
// error makes Lambda retry the batch; exhausted retries go to the DLQ.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			log.Error().Err(err).Msg("review worker error")
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var v Verdict
	if err := json.Unmarshal([]byte(rec.Body), &v); err != nil {
		return fmt.Errorf("invalid verdict body: %w", err)
	}

	var newStatus string
	switch v.Decision {
	case "APPROVE":
		newStatus = orders.StatusApproved
	case "REJECT":
		newStatus = orders.StatusRejected
	default:
		return fmt.Errorf("unknown review decision %q for order %s", v.Decision, v.OrderID)
	}

	logger := log.With().Str("order_id", v.OrderID).Str("reviewer", v.Reviewer).Logger()
	logger.Info().Str("decision", v.Decision).Msg("applying review verdict")

	o, err := p.store.Get(ctx, v.OrderID)
	if err != nil {
		return fmt.Errorf("fetch order: %w", err)
	}
	if o == nil {
		// should never happen; DLQ if it does
		return fmt.Errorf("order not found: %s", v.OrderID)
	}

	err = p.store.UpdateStatus(ctx, v.OrderID, orders.StatusPendingReview, newStatus)
	if errors.Is(err, orders.ErrStatusMismatch) {
		// Competing reviewer or duplicate delivery already resolved this one.
		// Re-read to distinguish a settled order from something unexpected.
		o2, gerr := p.store.Get(ctx, v.OrderID)
		if gerr != nil {
			return fmt.Errorf("re-fetch order after mismatch: %w", gerr)
		}
		switch o2.Status {
		case orders.StatusApproved, orders.StatusRejected:
			logger.Info().Str("status", o2.Status).Msg("order already resolved, ignoring duplicate verdict")
			return nil
		default:
			return fmt.Errorf("order %s in unexpected status %s", v.OrderID, o2.Status)
		}
	}
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	o.Status = newStatus
	if err := p.notifier.Publish(ctx, o); err != nil {
		logger.Warn().Err(err).Msg("outcome notification failed")
	}

	logger.Info().Str("status", newStatus).Msg("review verdict applied")
	return nil
}
