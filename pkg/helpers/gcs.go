package helpers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ErrObjectExists is returned by UploadObject when CreateOnly is set and the
// object is already present.
var ErrObjectExists = errors.New("gcs: object already exists")

// UploadOptions describes how an object is written.
type UploadOptions struct {
	ContentType string
	Metadata    map[string]string
	// CreateOnly refuses to overwrite an existing object.
	CreateOnly bool
}

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// GSURI formats the gs:// address of an object.
func GSURI(bucket, objectPath string) string {
	return fmt.Sprintf("gs://%s/%s", bucket, objectPath)
}

// UploadObject streams r into bucket/objectPath and returns its gs:// URI.
func UploadObject(ctx context.Context, client *storage.Client, bucket, objectPath string, opts UploadOptions, r io.Reader) (string, error) {
	obj := client.Bucket(bucket).Object(objectPath)
	if opts.CreateOnly {
		obj = obj.If(storage.Conditions{DoesNotExist: true})
	}
	wc := obj.NewWriter(ctx)
	wc.ContentType = opts.ContentType
	wc.Metadata = opts.Metadata
	wc.ChunkSize = 0 // single request; objects here are small
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
			return GSURI(bucket, objectPath), ErrObjectExists
		}
		return "", err
	}
	return GSURI(bucket, objectPath), nil
}
