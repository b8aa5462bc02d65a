package results

import (
	"context"
	"errors"
	"time"

	"github.com/GermanButtiero/reaction-time/internal/experiment"
	"github.com/m-mizutani/goerr/v2"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type sessionRow struct {
	ID            uint   `gorm:"primaryKey"`
	SessionID     string `gorm:"size:36;uniqueIndex"`
	ParticipantID string `gorm:"size:64;not null;uniqueIndex:idx_participant_trial"`
	TrialNumber   int    `gorm:"not null;uniqueIndex:idx_participant_trial"`
	Gender        string `gorm:"size:16"`
	Group         string `gorm:"size:64"`
	Age           int
	Variant       string `gorm:"size:16;index"`
	StartedAt     time.Time
	Completed     int
	Aborted       bool
	Trials        []trialRow `gorm:"foreignKey:SessionRowID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time
}

func (sessionRow) TableName() string { return "sessions" }

type trialRow struct {
	ID           uint `gorm:"primaryKey"`
	SessionRowID uint `gorm:"index;not null"`
	TrialIndex   int
	ReactionTime float64
	Correct      bool
	TrialType    string `gorm:"size:16"`
	Choice       string `gorm:"size:16"`
}

func (trialRow) TableName() string { return "trial_results" }

// SQLStore keeps sessions in a database. The unique index on participant
// and trial number makes the append atomic.
type SQLStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

func OpenMySQL(dsn string, log *zap.Logger) (*SQLStore, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "open mysql")
	}
	return NewSQLStore(db, log)
}

func NewSQLStore(db *gorm.DB, log *zap.Logger) (*SQLStore, error) {
	if err := db.AutoMigrate(&sessionRow{}, &trialRow{}); err != nil {
		return nil, goerr.Wrap(err, "migrate results tables")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SQLStore{db: db, logger: log}, nil
}

func (s *SQLStore) Exists(ctx context.Context, participantID string, trialNumber int) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&sessionRow{}).
		Where("participant_id = ? AND trial_number = ?", participantID, trialNumber).
		Count(&n).Error
	if err != nil {
		return false, goerr.Wrap(err, "count sessions",
			goerr.V("participant", participantID), goerr.V("trial", trialNumber))
	}
	return n > 0, nil
}

// Preflight checks that the database is reachable.
func (s *SQLStore) Preflight(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return goerr.Wrap(err, "get sql db")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return goerr.Wrap(err, "ping mysql")
	}
	return nil
}

func (s *SQLStore) Append(ctx context.Context, sess *experiment.Session) error {
	row := toSessionRow(sess)
	err := s.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return goerr.Wrap(ErrDuplicateSession, "insert session",
			goerr.V("participant", row.ParticipantID), goerr.V("trial", row.TrialNumber))
	}
	if err != nil {
		return goerr.Wrap(err, "insert session", goerr.V("session_id", row.SessionID))
	}
	s.logger.Info("session saved",
		zap.String("participant", row.ParticipantID),
		zap.Int("trial", row.TrialNumber),
		zap.Int("results", len(row.Trials)),
	)
	return nil
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return goerr.Wrap(err, "get sql db")
	}
	return sqlDB.Close()
}

func toSessionRow(sess *experiment.Session) sessionRow {
	p := sess.Participant
	row := sessionRow{
		SessionID:     sess.ID.String(),
		ParticipantID: p.ID,
		TrialNumber:   p.TrialNumber,
		Gender:        p.Gender,
		Group:         p.Group,
		Age:           p.Age,
		Variant:       string(sess.Variant),
		StartedAt:     sess.StartedAt,
		Completed:     len(sess.Results),
		Aborted:       sess.Aborted,
		Trials:        make([]trialRow, 0, len(sess.Results)),
	}
	for _, r := range sess.Results {
		row.Trials = append(row.Trials, trialRow{
			TrialIndex:   r.Index,
			ReactionTime: r.Seconds(),
			Correct:      r.Correct,
			TrialType:    string(r.Type),
			Choice:       string(r.Choice),
		})
	}
	return row
}
