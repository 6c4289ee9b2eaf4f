// Package publish hands finished report files to downstream sinks: a Google
// spreadsheet tab and a Cloud Storage bucket. Publishing runs after the
// output is saved and never affects it.
package publish

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/kardex-extract/internal/config"
)

// Table is a persisted report ready to publish.
type Table struct {
	// Name is the report name, used as the default sheet tab.
	Name string

	// Path is the CSV file on disk.
	Path string

	Header  []string
	Records [][]string
}

// Publisher sends a table somewhere.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, t Table) error
	Close() error
}

// FromConfig builds every publisher enabled in cfg.
func FromConfig(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) ([]Publisher, error) {
	var pubs []Publisher

	if cfg.Sheets.Enabled() {
		p, err := NewSheetsPublisher(ctx, cfg.Sheets, log)
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, p)
	}

	if cfg.GCS.Enabled() {
		p, err := NewGCSPublisher(ctx, cfg.GCS, log)
		if err != nil {
			CloseAll(pubs)
			return nil, err
		}
		pubs = append(pubs, p)
	}

	return pubs, nil
}

// All publishes t to every publisher and joins the failures.
func All(ctx context.Context, pubs []Publisher, t Table, log logrus.FieldLogger) error {
	var errs []error
	for _, p := range pubs {
		entry := log.WithFields(logrus.Fields{"publisher": p.Name(), "table": t.Name})
		if err := p.Publish(ctx, t); err != nil {
			entry.WithError(err).Warn("publish failed")
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		entry.WithField("rows", len(t.Records)).Info("published")
	}
	return errors.Join(errs...)
}

// CloseAll releases every publisher.
func CloseAll(pubs []Publisher) {
	for _, p := range pubs {
		_ = p.Close()
	}
}
