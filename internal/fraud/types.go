package fraud

// Decision tokens the model is instructed to emit. They map 1:1 onto order
// statuses; anything else is routed to manual review by the pipeline.
const (
	DecisionApproved      = "APPROVED"
	DecisionRejected      = "REJECTED"
	DecisionPendingReview = "PENDING_REVIEW"
)

// Analysis is the parsed model verdict for a single order. It is ephemeral:
// the pipeline folds the relevant fields into the order and discards it.
type Analysis struct {
	Score           float64  `json:"score"`      // 0-10, higher is safer
	RiskLevel       string   `json:"risk_level"` // LOW | MEDIUM | HIGH
	Decision        string   `json:"decision"`
	Confidence      int      `json:"confidence"` // 0-100
	FraudIndicators []string `json:"fraud_indicators"`
	Reasoning       string   `json:"reasoning"`
	Recommendations []string `json:"recommendations"`
	TokensUsed      int32    `json:"-"` // input+output, from call metadata
}

// AnalysisError wraps any failure of the model call or of parsing its
// response. It is fatal to the request: an order with no verdict is never
// persisted or silently approved.
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string {
	return "fraud analysis failed: " + e.Err.Error()
}

func (e *AnalysisError) Unwrap() error { return e.Err }
