package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-fraud-orderflow/internal/cost"
	"github.com/imrishuroy/go-fraud-orderflow/internal/fraud"
	"github.com/imrishuroy/go-fraud-orderflow/internal/orders"
	"github.com/imrishuroy/go-fraud-orderflow/internal/pipeline"
)

type okValidator struct{}

func (okValidator) Validate(*orders.Order) []string { return nil }

type stubAnalyzer struct {
	analysis *fraud.Analysis
	err      error
}

func (s stubAnalyzer) Analyze(context.Context, *orders.Order) (*fraud.Analysis, error) {
	return s.analysis, s.err
}

type noopStore struct{ err error }

func (s noopStore) Put(context.Context, *orders.Order) error { return s.err }

type noopArchiver struct{}

func (noopArchiver) Archive(context.Context, *orders.Order) error { return nil }

type noopNotifier struct{}

func (noopNotifier) Publish(context.Context, *orders.Order) error { return nil }

type noopMetrics struct{}

func (noopMetrics) Record(context.Context, string, string, cost.Metrics) error { return nil }

func testRouter(analyzer stubAnalyzer, store noopStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	proc := pipeline.New(pipeline.Config{
		Validator: okValidator{},
		Analyzer:  analyzer,
		Costs:     cost.NewCalculator(cost.DefaultRates()),
		Store:     store,
		Archive:   noopArchiver{},
		Notify:    noopNotifier{},
		Metrics:   noopMetrics{},
		MemoryMB:  512,
	})
	r := gin.New()
	RegisterOrdersRoutes(r, proc)
	return r
}

const orderBody = `{
	"orderId": "ORD-9001",
	"customerId": "CUST-1",
	"customerEmail": "pat@example.com",
	"items": [{"productId": "P-1", "name": "Monitor", "quantity": 1, "price": 199.0}],
	"totalAmount": 199.0,
	"shippingAddress": {"street": "1 Main St", "city": "Springfield", "country": "US"},
	"paymentMethod": "CREDIT_CARD"
}`

func postOrder(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPostOrderApproved(t *testing.T) {
	r := testRouter(stubAnalyzer{analysis: &fraud.Analysis{
		Score:    8.5,
		Decision: fraud.DecisionApproved,
	}}, noopStore{})

	w := postOrder(t, r, orderBody)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}

	var resp pipeline.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.OrderID != "ORD-9001" || resp.Status != orders.StatusApproved {
		t.Errorf("response = %+v", resp)
	}
	if resp.AIScore == nil || *resp.AIScore != 8.5 {
		t.Errorf("aiScore = %v, want 8.5", resp.AIScore)
	}
}

func TestPostOrderMalformedBody(t *testing.T) {
	r := testRouter(stubAnalyzer{}, noopStore{})

	w := postOrder(t, r, `{"orderId": `)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "invalid_request_body") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestPostOrderAnalyzerOutage(t *testing.T) {
	r := testRouter(stubAnalyzer{err: &fraud.AnalysisError{Err: errors.New("bedrock unavailable")}}, noopStore{})

	w := postOrder(t, r, orderBody)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Internal server error") {
		t.Errorf("body = %s", w.Body.String())
	}
	if strings.Contains(w.Body.String(), "bedrock") {
		t.Error("internal failure detail leaked to the caller")
	}
}

func TestPostOrderStoreOutage(t *testing.T) {
	r := testRouter(stubAnalyzer{analysis: &fraud.Analysis{
		Score:    8.0,
		Decision: fraud.DecisionApproved,
	}}, noopStore{err: errors.New("table missing")})

	w := postOrder(t, r, orderBody)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}
