package fraud

import (
	"fmt"
	"strings"

	"github.com/imrishuroy/go-fraud-orderflow/internal/orders"
)

const promptHeader = `You are an expert fraud detection system for an e-commerce platform.
Your task is to analyze the following order and assign a fraud risk score from 0 to 10.

SCORING RULES:
- Score 0-3: HIGH RISK (Reject order)
- Score 4-6: MEDIUM RISK (Manual review required)
- Score 7-10: LOW RISK (Approve order)

FRAUD INDICATORS TO CHECK:

1. EMAIL ANALYSIS (Weight: 20%)
   - Disposable email domains (tempmail, guerrillamail, 10minutemail): -3 points
   - Free email with suspicious patterns: -1 point
   - Corporate/business email: +1 point

2. ORDER VALUE ANALYSIS (Weight: 20%)
   - Order < $50: Low risk (+1 point)
   - Order > $2000 from new customer: High risk (-2 points)
   - Order > $5000: Very high risk (-3 points)

3. QUANTITY ANALYSIS (Weight: 15%)
   - > 10 items from new customer: High risk (-2 points)
   - > 20 items: Very high risk (-3 points)

4. SHIPPING ADDRESS ANALYSIS (Weight: 20%)
   - Complete, valid address: +1 point
   - Incomplete address: -2 points
   - Invalid zip code: -1 point

5. PRODUCT TYPE ANALYSIS (Weight: 10%)
   - High-risk products (gift cards, electronics in bulk): -2 points

6. CUSTOMER HISTORY (Weight: 10%)
   - New customer: -1 point
   - VIP customer (> 20 orders): +2 points

7. TIMING ANALYSIS (Weight: 5%)
   - Order placed late night (12 AM - 6 AM): -1 point
`

const promptFooter = `RESPONSE FORMAT (JSON):
{
  "score": <number 0-10>,
  "risk_level": "<LOW|MEDIUM|HIGH>",
  "decision": "<APPROVED|PENDING_REVIEW|REJECTED>",
  "confidence": <number 0-100>,
  "fraud_indicators": ["List of specific fraud indicators found"],
  "reasoning": "Brief explanation of the decision",
  "recommendations": ["Any recommendations"]
}

Analyze the order and provide your assessment in JSON format only.`

// BuildPrompt renders the deterministic fraud-detection prompt: the fixed
// scoring rubric followed by every order attribute. Identical orders always
// produce identical prompts.
func BuildPrompt(o *orders.Order) string {
	var items strings.Builder
	for _, it := range o.Items {
		fmt.Fprintf(&items, "  - %s (Qty: %d, Price: $%.2f)\n", it.Name, it.Quantity, it.Price)
	}

	customerType := o.CustomerType
	if customerType == "" {
		customerType = orders.CustomerRegular
	}

	var addr strings.Builder
	if a := o.ShippingAddress; a != nil {
		fmt.Fprintf(&addr, "%s\n%s, %s %s\n%s", a.Street, a.City, a.State, a.ZipCode, a.Country)
	}

	return fmt.Sprintf(`%s
ORDER DETAILS:

Order ID: %s
Customer ID: %s
Customer Email: %s
Customer Type: %s
Order History: %d previous orders

Items:
%s
Total Amount: $%.2f

Shipping Address:
%s

Payment Method: %s

%s`,
		promptHeader,
		o.OrderID,
		o.CustomerID,
		o.CustomerEmail,
		customerType,
		o.OrderHistory,
		items.String(),
		o.TotalAmount,
		addr.String(),
		o.PaymentMethod,
		promptFooter,
	)
}
