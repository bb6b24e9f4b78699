package cloud

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	apierrors "datastudio/internal/errors"
)

// Credentials is the per-request key pair for an S3 export. Credentials
// are never persisted; every export call carries its own.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

// Complete reports whether both halves of the key pair are present.
func (c Credentials) Complete() bool {
	return strings.TrimSpace(c.AccessKeyID) != "" && strings.TrimSpace(c.SecretAccessKey) != ""
}

// Object is one blob to upload.
type Object struct {
	Key         string
	Body        []byte
	ContentType string
}

// ExportInput describes a batch of objects bound for one bucket.
type ExportInput struct {
	Bucket      string
	Region      string
	Credentials Credentials
	Objects     []Object
}

// uploadAPI is the slice of the S3 transfer manager the exporter needs.
// Tests substitute a fake; production code uses manager.Uploader.
type uploadAPI interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Exporter uploads analysis artifacts to S3. A fresh client is built per
// export because credentials arrive with each request.
type Exporter struct {
	logger      *slog.Logger
	newUploader func(region string, creds Credentials) uploadAPI
}

// NewExporter creates an S3 exporter. A nil logger falls back to
// slog.Default.
func NewExporter(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		logger: logger,
		newUploader: func(region string, creds Credentials) uploadAPI {
			cfg := aws.Config{
				Region: region,
				Credentials: credentials.NewStaticCredentialsProvider(
					creds.AccessKeyID, creds.SecretAccessKey, ""),
			}
			return manager.NewUploader(s3.NewFromConfig(cfg))
		},
	}
}

// Export uploads every object in the input and returns their locators in
// s3://bucket/key form, in input order. The first failing upload aborts
// the batch; objects already uploaded stay where they are, matching the
// no-retry error model. Any transport error is wrapped in a
// CloudExportError with the underlying message intact.
func (e *Exporter) Export(ctx context.Context, in ExportInput) ([]string, error) {
	if strings.TrimSpace(in.Bucket) == "" {
		return nil, apierrors.NewCloudExportError("validate", fmt.Errorf("bucket name is required"))
	}
	if strings.TrimSpace(in.Region) == "" {
		return nil, apierrors.NewCloudExportError("validate", fmt.Errorf("region is required"))
	}
	if !in.Credentials.Complete() {
		return nil, apierrors.NewCloudExportError("validate", fmt.Errorf("access key id and secret access key are required"))
	}

	uploader := e.newUploader(in.Region, in.Credentials)

	locators := make([]string, 0, len(in.Objects))
	for _, obj := range in.Objects {
		input := &s3.PutObjectInput{
			Bucket: aws.String(in.Bucket),
			Key:    aws.String(obj.Key),
			Body:   bytes.NewReader(obj.Body),
		}
		if obj.ContentType != "" {
			input.ContentType = aws.String(obj.ContentType)
		}

		if _, err := uploader.Upload(ctx, input); err != nil {
			e.logger.ErrorContext(ctx, "s3 upload failed",
				slog.String("bucket", in.Bucket),
				slog.String("key", obj.Key),
				slog.String("error", err.Error()))
			return nil, apierrors.NewCloudExportError(fmt.Sprintf("upload %s", obj.Key), err)
		}

		locator := fmt.Sprintf("s3://%s/%s", in.Bucket, obj.Key)
		locators = append(locators, locator)

		e.logger.InfoContext(ctx, "s3 object uploaded",
			slog.String("locator", locator),
			slog.Int("bytes", len(obj.Body)))
	}

	return locators, nil
}

// ObjectKey joins a key prefix and an object name. Trailing slashes on
// the prefix are dropped; an empty prefix yields the bare name.
func ObjectKey(prefix, name string) string {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
