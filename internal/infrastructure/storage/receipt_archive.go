package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/evcharge/internal/domain/entity"
	"github.com/oksasatya/evcharge/pkg/helpers"
)

type uploadFunc func(ctx context.Context, objectPath string, opts helpers.UploadOptions, r io.Reader) (string, error)

// ReceiptArchive writes verified payment receipts as JSON objects under
// receipts/<charging record id>/<payment id>.json. A receipt is written once;
// re-verifying the same payment keeps the first copy.
type ReceiptArchive struct {
	upload uploadFunc
}

func NewReceiptArchive(client *storage.Client, bucket string) *ReceiptArchive {
	return &ReceiptArchive{upload: func(ctx context.Context, objectPath string, opts helpers.UploadOptions, r io.Reader) (string, error) {
		return helpers.UploadObject(ctx, client, bucket, objectPath, opts, r)
	}}
}

func receiptPath(r *entity.PaymentReceipt) string {
	return path.Join("receipts", r.ChargingRecordID, r.PaymentID+".json")
}

func (a *ReceiptArchive) Archive(ctx context.Context, r *entity.PaymentReceipt) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	uri, err := a.upload(ctx, receiptPath(r), helpers.UploadOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"order_id": r.OrderID, "payment_id": r.PaymentID},
		CreateOnly:  true,
	}, bytes.NewReader(b))
	if errors.Is(err, helpers.ErrObjectExists) {
		return uri, nil
	}
	return uri, err
}
