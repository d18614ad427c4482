package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/imrishuroy/go-fraud-orderflow/internal/awsclients"
	"github.com/imrishuroy/go-fraud-orderflow/internal/orders"
)

// Writer archives order snapshots to S3 for compliance and audit.
// Keys are partitioned as <status>/<yyyy-mm-dd>/<orderId>.json so lifecycle
// policies and the analytics data lake can address them by outcome and day.
type Writer struct {
	client  awsclients.S3API
	bucket  string
	nowFunc func() time.Time
}

func NewWriter(client awsclients.S3API, bucket string) *Writer {
	return &Writer{
		client:  client,
		bucket:  bucket,
		nowFunc: time.Now,
	}
}

// Archive writes the order as pretty-printed JSON. The pipeline treats a
// failure here as best-effort; this method just reports it.
func (w *Writer) Archive(ctx context.Context, o *orders.Order) error {
	body, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	key := fmt.Sprintf("%s/%s/%s.json",
		strings.ToLower(o.Status),
		w.nowFunc().UTC().Format("2006-01-02"),
		o.OrderID,
	)

	_, err = w.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      sdkaws.String(w.bucket),
		Key:         sdkaws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: sdkaws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}
