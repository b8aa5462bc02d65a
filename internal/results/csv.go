package results

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/GermanButtiero/reaction-time/internal/experiment"
	"github.com/m-mizutani/goerr/v2"
	"go.uber.org/zap"
)

const (
	defaultLockTimeout = 5 * time.Second
	lockRetryInterval  = 50 * time.Millisecond
)

// CSVStore appends one row per session to a delimited file. A sibling
// ".lock" file serialises the check-then-append between processes.
type CSVStore struct {
	path        string
	slots       int
	lockTimeout time.Duration
	logger      *zap.Logger
}

type CSVOption func(*CSVStore)

func WithLockTimeout(d time.Duration) CSVOption {
	return func(s *CSVStore) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

func WithCSVLogger(l *zap.Logger) CSVOption {
	return func(s *CSVStore) { s.logger = l }
}

func NewCSVStore(path string, slots int, opts ...CSVOption) *CSVStore {
	s := &CSVStore{
		path:        path,
		slots:       slots,
		lockTimeout: defaultLockTimeout,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CSVStore) Path() string { return s.path }

func (s *CSVStore) Close() error { return nil }

// Exists scans the file for a row with the participant id and trial number.
// A missing file means no record.
func (s *CSVStore) Exists(_ context.Context, participantID string, trialNumber int) (bool, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, goerr.Wrap(err, "open results file", goerr.V("path", s.path))
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, goerr.Wrap(err, "read results header", goerr.V("path", s.path))
	}

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, goerr.Wrap(err, "read results row", goerr.V("path", s.path))
		}
		if len(row) < 2 || row[0] != participantID {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err == nil && n == trialNumber {
			s.logger.Info("session found in results file",
				zap.String("participant", participantID), zap.Int("trial", trialNumber))
			return true, nil
		}
	}
}

// Preflight checks before a session starts that Append will not refuse it
// for a foreign header or a lock nobody releases.
func (s *CSVStore) Preflight(ctx context.Context) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	return s.checkHeader()
}

// Append writes the session as a single row, adding the header to an empty
// file.
func (s *CSVStore) Append(ctx context.Context, sess *experiment.Session) error {
	if len(sess.Results) > s.slots {
		return goerr.Wrap(ErrTooManyResults, "append session",
			goerr.V("results", len(sess.Results)), goerr.V("slots", s.slots))
	}

	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	p := sess.Participant
	exists, err := s.Exists(ctx, p.ID, p.TrialNumber)
	if err != nil {
		return err
	}
	if exists {
		return goerr.Wrap(ErrDuplicateSession, "append session",
			goerr.V("participant", p.ID), goerr.V("trial", p.TrialNumber))
	}

	if err := s.checkHeader(); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return goerr.Wrap(err, "open results file", goerr.V("path", s.path))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return goerr.Wrap(err, "stat results file", goerr.V("path", s.path))
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(Header(s.slots)); err != nil {
			return goerr.Wrap(err, "write results header", goerr.V("path", s.path))
		}
	}
	if err := w.Write(Row(sess, s.slots)); err != nil {
		return goerr.Wrap(err, "write results row", goerr.V("path", s.path))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return goerr.Wrap(err, "flush results file", goerr.V("path", s.path))
	}
	if err := f.Sync(); err != nil {
		return goerr.Wrap(err, "sync results file", goerr.V("path", s.path))
	}

	s.logger.Info("session saved",
		zap.String("path", s.path),
		zap.String("participant", p.ID),
		zap.Int("trial", p.TrialNumber),
		zap.Int("results", len(sess.Results)),
	)
	return nil
}

// checkHeader refuses to append rows of a different width to an existing
// table.
func (s *CSVStore) checkHeader() error {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return goerr.Wrap(err, "open results file", goerr.V("path", s.path))
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return goerr.Wrap(err, "read results header", goerr.V("path", s.path))
	}
	if !slices.Equal(header, Header(s.slots)) {
		return goerr.Wrap(ErrHeaderMismatch, "check results header",
			goerr.V("path", s.path), goerr.V("columns", len(header)), goerr.V("slots", s.slots))
	}
	return nil
}

func (s *CSVStore) lock(ctx context.Context) (func(), error) {
	lockPath := s.path + ".lock"
	deadline := time.Now().Add(s.lockTimeout)

	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			_, _ = f.WriteString(strconv.Itoa(os.Getpid()))
			_ = f.Close()
			return func() {
				if err := os.Remove(lockPath); err != nil {
					s.logger.Warn("failed to remove lock file", zap.String("path", lockPath), zap.Error(err))
				}
			}, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, goerr.Wrap(err, "create lock file", goerr.V("path", lockPath))
		}
		if time.Now().After(deadline) {
			pid := lockHolder(lockPath)
			return nil, goerr.Wrap(ErrLocked, fmt.Sprintf("acquire lock held by pid %s", pid),
				goerr.V("path", lockPath), goerr.V("pid", pid))
		}

		select {
		case <-ctx.Done():
			return nil, goerr.Wrap(ctx.Err(), "acquire lock", goerr.V("path", lockPath))
		case <-time.After(lockRetryInterval):
		}
	}
}

// lockHolder returns the pid written into a lock file, or "unknown".
func lockHolder(lockPath string) string {
	b, err := os.ReadFile(lockPath)
	if err != nil {
		return "unknown"
	}
	if pid := strings.TrimSpace(string(b)); pid != "" {
		return pid
	}
	return "unknown"
}
