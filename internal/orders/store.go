package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/imrishuroy/go-fraud-orderflow/internal/awsclients"
)

// StatusDateIndex is the GSI keyed by GSI1PK (STATUS#<status>) and GSI1SK
// (order timestamp), used by the analytics side to query orders by status
// and time range.
const StatusDateIndex = "StatusDateIndex"

// Store encapsulates operations on the orders table.
//
// Item layout:
//   - PK: ORDER#<orderId>, SK: METADATA
//   - flattened query attributes (status, total_amount, ai_score, ...)
//   - order_data: full order JSON snapshot
//   - GSI1PK: STATUS#<status>, GSI1SK: timestamp
type Store struct {
	client    awsclients.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new orders Store.
func NewStore(client awsclients.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// orderItem is the flattened table record. The full order rides along as a
// JSON snapshot in order_data; the other attributes exist for queries and
// the status GSI.
type orderItem struct {
	PK            string   `dynamodbav:"PK"`
	SK            string   `dynamodbav:"SK"`
	OrderID       string   `dynamodbav:"order_id"`
	CustomerID    string   `dynamodbav:"customer_id"`
	CustomerEmail string   `dynamodbav:"customer_email"`
	Status        string   `dynamodbav:"status"`
	TotalAmount   float64  `dynamodbav:"total_amount"`
	Timestamp     string   `dynamodbav:"timestamp"`
	ProcessedAt   string   `dynamodbav:"processed_at"`
	AIScore       *float64 `dynamodbav:"ai_score,omitempty"`
	OrderData     string   `dynamodbav:"order_data"`
	GSI1PK        string   `dynamodbav:"GSI1PK"`
	GSI1SK        string   `dynamodbav:"GSI1SK"`
}

// Put writes the order snapshot. It is an unconditional put: a duplicate
// submission of the same order id is last-write-wins.
func (s *Store) Put(ctx context.Context, o *Order) error {
	orderJSON, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	ts := o.Timestamp.UTC().Format(time.RFC3339)
	item, err := attributevalue.MarshalMap(orderItem{
		PK:            "ORDER#" + o.OrderID,
		SK:            "METADATA",
		OrderID:       o.OrderID,
		CustomerID:    o.CustomerID,
		CustomerEmail: o.CustomerEmail,
		Status:        o.Status,
		TotalAmount:   o.TotalAmount,
		Timestamp:     ts,
		ProcessedAt:   o.ProcessedAt.UTC().Format(time.RFC3339),
		AIScore:       o.AIScore,
		OrderData:     string(orderJSON),
		GSI1PK:        "STATUS#" + o.Status,
		GSI1SK:        ts,
	})
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put order: %w", err)
	}
	return nil
}

// Get fetches an order snapshot by order id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, orderID string) (*Order, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key:       orderKey(orderID),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return orderFromItem(out.Item)
}

// ErrStatusMismatch indicates a conditional status transition failed because
// the stored status no longer matches the expected one.
var ErrStatusMismatch = errors.New("status mismatch/conditional failed")

// UpdateStatus conditionally transitions the order from expectedStatus to
// newStatus, keeping the status GSI key in sync. Returns ErrStatusMismatch
// if the condition failed.
func (s *Store) UpdateStatus(ctx context.Context, orderID, expectedStatus, newStatus string) error {
	now := s.nowFunc()
	updateExpr := "SET #s = :new, GSI1PK = :gsipk, updated_at = :ua"
	input := &dyn.UpdateItemInput{
		TableName:        &s.tableName,
		Key:              orderKey(orderID),
		UpdateExpression: &updateExpr,
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":new":      &types.AttributeValueMemberS{Value: newStatus},
			":gsipk":    &types.AttributeValueMemberS{Value: "STATUS#" + newStatus},
			":ua":       &types.AttributeValueMemberS{Value: now.UTC().Format(time.RFC3339)},
			":expected": &types.AttributeValueMemberS{Value: expectedStatus},
		},
		ConditionExpression: awsString("#s = :expected"),
	}

	_, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		var cc *types.ConditionalCheckFailedException
		if errors.As(err, &cc) {
			return ErrStatusMismatch
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// QueryByStatus returns order snapshots with the given status whose
// timestamps fall in [from, to], via the StatusDateIndex GSI.
func (s *Store) QueryByStatus(ctx context.Context, status string, from, to time.Time) ([]Order, error) {
	var out []Order
	var startKey map[string]types.AttributeValue

	for {
		resp, err := s.client.Query(ctx, &dyn.QueryInput{
			TableName:              &s.tableName,
			IndexName:              awsString(StatusDateIndex),
			KeyConditionExpression: awsString("GSI1PK = :pk AND GSI1SK BETWEEN :from AND :to"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk":   &types.AttributeValueMemberS{Value: "STATUS#" + status},
				":from": &types.AttributeValueMemberS{Value: from.UTC().Format(time.RFC3339)},
				":to":   &types.AttributeValueMemberS{Value: to.UTC().Format(time.RFC3339)},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("query by status %s: %w", status, err)
		}

		for _, item := range resp.Items {
			o, err := orderFromItem(item)
			if err != nil {
				return nil, err
			}
			out = append(out, *o)
		}

		if len(resp.LastEvaluatedKey) == 0 {
			break
		}
		startKey = resp.LastEvaluatedKey
	}

	return out, nil
}

func orderKey(orderID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "ORDER#" + orderID},
		"SK": &types.AttributeValueMemberS{Value: "METADATA"},
	}
}

func orderFromItem(item map[string]types.AttributeValue) (*Order, error) {
	data, ok := item["order_data"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, errors.New("item missing order_data attribute")
	}
	var o Order
	if err := json.Unmarshal([]byte(data.Value), &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	// flattened status is authoritative after review transitions
	if st, ok := item["status"].(*types.AttributeValueMemberS); ok {
		o.Status = st.Value
	}
	return &o, nil
}

func awsString(s string) *string { return &s }
