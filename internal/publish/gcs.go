package publish

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/ginjaninja78/kardex-extract/internal/config"
	"github.com/ginjaninja78/kardex-extract/internal/store"
)

// objectWriterFunc opens a writer for bucket/object. Cancelling ctx before
// Close aborts the upload without creating the object.
type objectWriterFunc func(ctx context.Context, bucket, object string) io.WriteCloser

// GCSPublisher uploads the report file to a bucket.
type GCSPublisher struct {
	client *storage.Client
	open   objectWriterFunc
	bucket string
	prefix string
	log    logrus.FieldLogger
}

// NewGCSPublisher creates a storage client. Without a credentials file the
// application default credentials are used.
func NewGCSPublisher(ctx context.Context, cfg config.GCSConfig, log logrus.FieldLogger) (*GCSPublisher, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}

	p := &GCSPublisher{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix, log: log}
	p.open = func(ctx context.Context, bucket, object string) io.WriteCloser {
		w := client.Bucket(bucket).Object(object).NewWriter(ctx)
		w.ContentType = "text/csv; charset=utf-8"
		return w
	}
	return p, nil
}

func (p *GCSPublisher) Name() string { return "gcs" }

func (p *GCSPublisher) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

// ObjectName is prefix/filename of the table.
func (p *GCSPublisher) ObjectName(t Table) string {
	name := t.Name + ".csv"
	if t.Path != "" {
		name = filepath.Base(t.Path)
	}
	return path.Join(p.prefix, name)
}

// Publish copies the CSV file, or renders the records when there is no
// file, into the bucket. A failed copy cancels the writer so the previous
// object, if any, is left untouched.
func (p *GCSPublisher) Publish(ctx context.Context, t Table) error {
	object := p.ObjectName(t)
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	w := p.open(wctx, p.bucket, object)

	var err error
	if t.Path != "" {
		err = copyFile(w, t.Path)
	} else {
		err = store.WriteCSV(w, t.Header, t.Records)
	}
	if err != nil {
		cancel()
		_ = w.Close()
		return fmt.Errorf("upload gs://%s/%s: %w", p.bucket, object, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("upload gs://%s/%s: %w", p.bucket, object, err)
	}
	return nil
}

func copyFile(w io.Writer, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
