package validation

import (
	"regexp"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/imrishuroy/go-fraud-orderflow/internal/orders"
)

// emailPattern: non-empty local part without spaces, '@', non-empty domain.
var emailPattern = regexp.MustCompile(`^[^\s@]+@.+$`)

// messages maps a violated field to its stable, human-readable message.
// Keyed by validator struct namespace so every rule yields exactly one entry.
var messages = map[string]string{
	"Order.OrderID":                 "Order ID is required",
	"Order.CustomerID":              "Customer ID is required",
	"Order.CustomerEmail":           "Valid email is required",
	"Order.Items":                   "Order must have at least one item",
	"Order.TotalAmount":             "Total amount must be greater than zero",
	"Order.ShippingAddress":         "Shipping address is required",
	"Order.ShippingAddress.Street":  "Shipping street is required",
	"Order.ShippingAddress.City":    "Shipping city is required",
	"Order.ShippingAddress.Country": "Shipping country is required",
	"Order.PaymentMethod":           "Payment method is required",
}

// Validator checks order business rules before any model invocation, so
// malformed input never pays for an AI call.
type Validator struct {
	v *validatorv10.Validate
}

// New returns a configured Validator with the order email rule registered.
func New() *Validator {
	v := validatorv10.New()

	_ = v.RegisterValidation("order_email", func(fl validatorv10.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})

	return &Validator{v: v}
}

// Validate returns one message per violated rule, in struct field order, so
// output is stable for a given input. All rules are evaluated; nothing
// short-circuits. An empty slice means the order is valid.
func (va *Validator) Validate(o *orders.Order) []string {
	err := va.v.Struct(o)
	if err == nil {
		return nil
	}

	ve, ok := err.(validatorv10.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	violations := make([]string, 0, len(ve))
	for _, fe := range ve {
		if msg, ok := messages[fe.StructNamespace()]; ok {
			violations = append(violations, msg)
			continue
		}
		violations = append(violations, fe.Error())
	}
	return violations
}
