package experiment

import (
	"time"

	"github.com/google/uuid"
)

type Participant struct {
	ID          string
	TrialNumber int
	Gender      string
	Age         int
	Group       string
}

// Session is one participant run. Results are only appended by the
// machine and copied here once the run ends.
type Session struct {
	ID          uuid.UUID
	Participant Participant
	Variant     VariantID
	Practice    bool
	StartedAt   time.Time
	Results     []TrialResult
	Aborted     bool
}

func NewSession(p Participant, variant VariantID, practice bool, startedAt time.Time) *Session {
	return &Session{
		ID:          uuid.New(),
		Participant: p,
		Variant:     variant,
		Practice:    practice,
		StartedAt:   startedAt,
	}
}

type Summary struct {
	Trials       int
	Correct      int
	MeanReaction time.Duration
}

func (s *Session) Summary() Summary {
	sum := Summary{Trials: len(s.Results)}
	if sum.Trials == 0 {
		return sum
	}
	var total time.Duration
	for _, r := range s.Results {
		total += r.ReactionTime
		if r.Correct {
			sum.Correct++
		}
	}
	sum.MeanReaction = total / time.Duration(sum.Trials)
	return sum
}

func (s Summary) Accuracy() float64 {
	if s.Trials == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Trials)
}
