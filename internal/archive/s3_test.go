package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/imrishuroy/go-fraud-orderflow/internal/orders"
)

type mockS3 struct {
	puts []*s3.PutObjectInput
	err  error
}

func (m *mockS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.puts = append(m.puts, params)
	return &s3.PutObjectOutput{}, nil
}

func TestArchiveKeyAndBody(t *testing.T) {
	mock := &mockS3{}
	w := NewWriter(mock, "order-archive")
	w.nowFunc = func() time.Time { return time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC) }

	o := &orders.Order{
		OrderID:       "ORD-3001",
		CustomerEmail: "kim@example.com",
		TotalAmount:   120,
		Status:        orders.StatusPendingReview,
	}
	if err := w.Archive(context.Background(), o); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	if len(mock.puts) != 1 {
		t.Fatalf("puts = %d, want 1", len(mock.puts))
	}
	put := mock.puts[0]
	if *put.Bucket != "order-archive" {
		t.Errorf("bucket = %s", *put.Bucket)
	}
	if *put.Key != "pending_review/2026-08-30/ORD-3001.json" {
		t.Errorf("key = %s, want pending_review/2026-08-30/ORD-3001.json", *put.Key)
	}
	if *put.ContentType != "application/json" {
		t.Errorf("content type = %s", *put.ContentType)
	}

	body, err := io.ReadAll(put.Body)
	if err != nil {
		t.Fatal(err)
	}
	var got orders.Order
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("archived body is not valid JSON: %v", err)
	}
	if got.OrderID != "ORD-3001" || got.Status != orders.StatusPendingReview {
		t.Errorf("archived snapshot mismatch: %+v", got)
	}
}

func TestArchivePutFailure(t *testing.T) {
	w := NewWriter(&mockS3{err: errors.New("no such bucket")}, "missing")
	err := w.Archive(context.Background(), &orders.Order{OrderID: "ORD-1", Status: orders.StatusApproved})
	if err == nil {
		t.Fatal("expected error from failing put")
	}
}
