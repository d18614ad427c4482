package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/imrishuroy/go-fraud-orderflow/internal/cost"
	"github.com/imrishuroy/go-fraud-orderflow/internal/fraud"
	"github.com/imrishuroy/go-fraud-orderflow/internal/orders"
)

// Collaborator interfaces. Each side effect is injected so the pipeline can
// be exercised with in-memory fakes; production wiring lives in cmd/api.

type Validator interface {
	Validate(o *orders.Order) []string
}

type Analyzer interface {
	Analyze(ctx context.Context, o *orders.Order) (*fraud.Analysis, error)
}

// OrderStore is the authoritative record of order outcomes. A write failure
// here is fatal to the request.
type OrderStore interface {
	Put(ctx context.Context, o *orders.Order) error
}

type Archiver interface {
	Archive(ctx context.Context, o *orders.Order) error
}

type Notifier interface {
	Publish(ctx context.Context, o *orders.Order) error
}

type MetricsSink interface {
	Record(ctx context.Context, orderID, status string, m cost.Metrics) error
}

type ReviewQueue interface {
	RequestReview(ctx context.Context, o *orders.Order) error
}

// Config groups the pipeline's collaborators.
type Config struct {
	Validator Validator
	Analyzer  Analyzer
	Costs     *cost.Calculator
	Store     OrderStore
	Archive   Archiver
	Notify    Notifier
	Metrics   MetricsSink
	Review    ReviewQueue // optional; nil disables review enqueueing
	MemoryMB  int32       // execution memory allocation, feeds the cost model
}

// Response is the caller-facing outcome of one processing run.
type Response struct {
	OrderID          string       `json:"orderId"`
	Status           string       `json:"status"`
	Message          string       `json:"message"`
	AIScore          *float64     `json:"aiScore,omitempty"`
	RejectionReasons []string     `json:"rejectionReasons,omitempty"`
	CostMetrics      cost.Metrics `json:"costMetrics"`
	Timestamp        string       `json:"timestamp"`
}

// Processor sequences one order through
// validate -> analyze -> decide -> cost -> persist -> archive -> notify -> meter.
// Each run owns its Order instance; nothing is shared across runs.
type Processor struct {
	cfg     Config
	nowFunc func() time.Time
}

func New(cfg Config) *Processor {
	return &Processor{cfg: cfg, nowFunc: time.Now}
}

// Process runs the full pipeline for one order. It returns the response
// body, an HTTP-style status code, and an error only for fatal outcomes
// (analysis or store failure); the handler must then reply with a generic
// error body and the returned code.
func (p *Processor) Process(ctx context.Context, o *orders.Order) (*Response, int, error) {
	start := p.nowFunc()
	o.Timestamp = start.UTC()

	if violations := p.cfg.Validator.Validate(o); len(violations) > 0 {
		log.Warn().Str("order_id", o.OrderID).Int("violations", len(violations)).Msg("order validation failed")
		return p.finishValidationError(ctx, o, violations, start)
	}

	analysis, err := p.cfg.Analyzer.Analyze(ctx, o)
	if err != nil {
		// No verdict means no persistence: an unanalyzed order must never be
		// stored as ambiguous or silently approved.
		return nil, http.StatusInternalServerError, fmt.Errorf("analyze order %s: %w", o.OrderID, err)
	}

	o.AIScore = &analysis.Score
	o.ProcessedAt = p.nowFunc().UTC()
	applyDecision(o, analysis)

	m := p.cfg.Costs.Compute(p.elapsedMs(start), p.cfg.MemoryMB, analysis.TokensUsed)
	o.CostMetrics = &m

	if code, err := p.persist(ctx, o, m); err != nil {
		return nil, code, err
	}

	log.Info().
		Str("order_id", o.OrderID).
		Str("status", o.Status).
		Float64("total_cost", m.TotalProcessingCost).
		Msg("order processed")

	return &Response{
		OrderID:          o.OrderID,
		Status:           o.Status,
		Message:          statusMessage(o.Status),
		AIScore:          o.AIScore,
		RejectionReasons: o.RejectionReasons,
		CostMetrics:      m,
		Timestamp:        o.ProcessedAt.Format(time.RFC3339),
	}, http.StatusOK, nil
}

// finishValidationError records the VALIDATION_ERROR outcome as a first-class
// terminal state: it is costed (zero AI usage), persisted, and flows through
// the same best-effort chain as decided orders.
func (p *Processor) finishValidationError(ctx context.Context, o *orders.Order, violations []string, start time.Time) (*Response, int, error) {
	o.Status = orders.StatusValidationError
	o.RejectionReasons = violations
	o.ProcessedAt = p.nowFunc().UTC()

	m := p.cfg.Costs.Compute(p.elapsedMs(start), p.cfg.MemoryMB, 0)
	o.CostMetrics = &m

	if code, err := p.persist(ctx, o, m); err != nil {
		return nil, code, err
	}

	return &Response{
		OrderID:          o.OrderID,
		Status:           orders.StatusValidationError,
		Message:          "Validation failed",
		RejectionReasons: violations,
		CostMetrics:      m,
		Timestamp:        o.ProcessedAt.Format(time.RFC3339),
	}, http.StatusBadRequest, nil
}

// persist runs the side-effect chain: the store write is fatal, everything
// after it is best-effort and cannot change the outcome already decided.
func (p *Processor) persist(ctx context.Context, o *orders.Order, m cost.Metrics) (int, error) {
	if err := p.cfg.Store.Put(ctx, o); err != nil {
		return http.StatusInternalServerError, fmt.Errorf("persist order %s: %w", o.OrderID, err)
	}

	p.bestEffort("archive", o.OrderID, func() error { return p.cfg.Archive.Archive(ctx, o) })
	p.bestEffort("notify", o.OrderID, func() error { return p.cfg.Notify.Publish(ctx, o) })
	if o.Status == orders.StatusPendingReview && p.cfg.Review != nil {
		p.bestEffort("review_enqueue", o.OrderID, func() error { return p.cfg.Review.RequestReview(ctx, o) })
	}
	p.bestEffort("metrics", o.OrderID, func() error { return p.cfg.Metrics.Record(ctx, o.OrderID, o.Status, m) })

	return 0, nil
}

// bestEffort applies the uniform swallow-and-log policy: one log line, no
// retry, no effect on the response.
func (p *Processor) bestEffort(step, orderID string, fn func() error) {
	if err := fn(); err != nil {
		log.Warn().Err(err).Str("step", step).Str("order_id", orderID).Msg("best-effort step failed")
	}
}

func (p *Processor) elapsedMs(start time.Time) int64 {
	return p.nowFunc().Sub(start).Milliseconds()
}

// applyDecision maps the model's decision token onto the order. A token
// outside the known set fails safe into the manual-review queue rather than
// approving or hard-failing a scored order.
func applyDecision(o *orders.Order, a *fraud.Analysis) {
	switch a.Decision {
	case fraud.DecisionApproved:
		o.Status = orders.StatusApproved
	case fraud.DecisionRejected:
		o.Status = orders.StatusRejected
		o.RejectionReasons = a.FraudIndicators
	case fraud.DecisionPendingReview:
		o.Status = orders.StatusPendingReview
		o.RejectionReasons = a.FraudIndicators
	default:
		o.Status = orders.StatusPendingReview
		o.RejectionReasons = append(a.FraudIndicators,
			fmt.Sprintf("Unrecognized model decision %q", a.Decision))
	}
}

func statusMessage(status string) string {
	switch status {
	case orders.StatusApproved:
		return "Order processed successfully"
	case orders.StatusRejected:
		return "Order rejected due to fraud indicators"
	case orders.StatusPendingReview:
		return "Order requires manual review"
	default:
		return "Order processed"
	}
}
