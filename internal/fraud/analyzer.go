package fraud

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/imrishuroy/go-fraud-orderflow/internal/orders"
)

// Analyzer scores orders for fraud through an injected model backend.
type Analyzer struct {
	invoker ModelInvoker
}

func NewAnalyzer(invoker ModelInvoker) *Analyzer {
	return &Analyzer{invoker: invoker}
}

// Analyze builds the rubric prompt for the order, invokes the model and
// parses its verdict. Any transport or parse failure returns an
// *AnalysisError; callers must treat it as fatal for the request.
func (a *Analyzer) Analyze(ctx context.Context, o *orders.Order) (*Analysis, error) {
	prompt := BuildPrompt(o)

	text, inTokens, outTokens, err := a.invoker.Invoke(ctx, prompt)
	if err != nil {
		return nil, &AnalysisError{Err: err}
	}

	analysis, err := ParseResponse(text)
	if err != nil {
		return nil, &AnalysisError{Err: err}
	}
	analysis.TokensUsed = inTokens + outTokens

	log.Info().
		Str("order_id", o.OrderID).
		Float64("score", analysis.Score).
		Str("decision", analysis.Decision).
		Int32("input_tokens", inTokens).
		Int32("output_tokens", outTokens).
		Msg("fraud analysis complete")

	return analysis, nil
}
