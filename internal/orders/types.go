package orders

import (
	"time"

	"github.com/imrishuroy/go-fraud-orderflow/internal/cost"
)

// Order statuses. An order reaches exactly one of these terminal states and
// is immutable afterwards, except that a reviewer verdict may move
// PENDING_REVIEW to APPROVED or REJECTED.
const (
	StatusApproved        = "APPROVED"
	StatusRejected        = "REJECTED"
	StatusPendingReview   = "PENDING_REVIEW"
	StatusValidationError = "VALIDATION_ERROR"
)

// Customer classifications.
const (
	CustomerRegular  = "REGULAR"
	CustomerBusiness = "BUSINESS"
	CustomerVIP      = "VIP"
)

// Item is a single order line item.
type Item struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Address is a shipping or billing address. Street, city and country are
// mandatory for shipping; state and zip are optional.
type Address struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state,omitempty" validate:"-"`
	ZipCode string `json:"zipCode,omitempty" validate:"-"`
	Country string `json:"country" validate:"required"`
}

// Order is the unit of work flowing through the pipeline. The inbound JSON
// payload binds directly into it; the pipeline fills the mutable lifecycle
// fields (Status, AIScore, RejectionReasons, CostMetrics, ProcessedAt)
// during a single processing run.
type Order struct {
	OrderID          string        `json:"orderId" validate:"required"`
	CustomerID       string        `json:"customerId" validate:"required"`
	CustomerEmail    string        `json:"customerEmail" validate:"required,order_email"`
	CustomerType     string        `json:"customerType,omitempty" validate:"-"` // REGULAR | BUSINESS | VIP, defaults REGULAR
	OrderHistory     int           `json:"orderHistory"`                        // prior order count
	Items            []Item        `json:"items" validate:"min=1"`
	TotalAmount      float64       `json:"totalAmount" validate:"gt=0"`
	ShippingAddress  *Address      `json:"shippingAddress" validate:"required"`
	BillingAddress   *Address      `json:"billingAddress,omitempty" validate:"-"`
	PaymentMethod    string        `json:"paymentMethod" validate:"required"`
	CardLast4        string        `json:"cardLast4,omitempty"`
	PONumber         string        `json:"poNumber,omitempty"` // purchase order number for business customers
	Timestamp        time.Time     `json:"timestamp"`
	Status           string        `json:"status,omitempty"`
	AIScore          *float64      `json:"aiScore,omitempty"`
	RejectionReasons []string      `json:"rejectionReasons,omitempty"`
	CostMetrics      *cost.Metrics `json:"costMetrics,omitempty"`
	ProcessedAt      time.Time     `json:"processedAt,omitempty"`
}
