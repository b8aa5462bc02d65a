// Package results persists finished sessions, one record per participant
// and trial number.
package results

import (
	"context"

	"github.com/GermanButtiero/reaction-time/internal/experiment"
	"github.com/m-mizutani/goerr/v2"
	"go.uber.org/zap"
)

const (
	DriverCSV   = "csv"
	DriverMySQL = "mysql"
)

type Store interface {
	Exists(ctx context.Context, participantID string, trialNumber int) (bool, error)
	Preflight(ctx context.Context) error
	Append(ctx context.Context, s *experiment.Session) error
	Close() error
}

type Options struct {
	Driver string
	Path   string
	DSN    string
	Slots  int
	Logger *zap.Logger
}

func Open(opts Options) (Store, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("results")

	switch opts.Driver {
	case "", DriverCSV:
		return NewCSVStore(opts.Path, opts.Slots, WithCSVLogger(log)), nil
	case DriverMySQL:
		return OpenMySQL(opts.DSN, log)
	}
	return nil, goerr.Wrap(ErrUnknownDriver, "open results store", goerr.V("driver", opts.Driver))
}
