package experiment

import (
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

type VariantID string

const (
	VariantSimple    VariantID = "simple"
	VariantStroop    VariantID = "stroop"
	VariantStroopInk VariantID = "stroop-ink"
)

var ErrUnknownVariant = errors.New("unknown variant")

type StartGate int

const (
	GateNone StartGate = iota
	GateKey
	GateCircle
)

type ResponseMode int

const (
	RespondKey ResponseMode = iota
	RespondOption
)

// Variant describes how one experiment drives the trial state machine.
type Variant struct {
	ID       VariantID
	Gate     StartGate
	StartKey Key
	Response ResponseMode

	CountdownMin     time.Duration
	CountdownMax     time.Duration
	PrematureDisplay time.Duration
	Dwell            time.Duration

	Trials         int
	PracticeTrials int
	Slots          int

	// InkStimulus makes the ink color, not the word, the expected answer.
	InkStimulus          bool
	CongruentProbability float64
}

func (v Variant) HasCountdown() bool { return v.CountdownMax > 0 }

func (v Variant) TotalTrials(practice bool) int {
	if practice {
		return v.PracticeTrials
	}
	return v.Trials
}

func Variants() []Variant {
	return []Variant{
		{
			ID:               VariantSimple,
			Gate:             GateKey,
			StartKey:         KeySpace,
			Response:         RespondKey,
			CountdownMin:     2 * time.Second,
			CountdownMax:     5 * time.Second,
			PrematureDisplay: 2 * time.Second,
			Dwell:            3 * time.Second,
			Trials:           10,
			PracticeTrials:   5,
			Slots:            10,
		},
		{
			ID:             VariantStroop,
			Gate:           GateNone,
			Response:       RespondOption,
			Dwell:          time.Second,
			Trials:         10,
			PracticeTrials: 5,
			Slots:          10,
		},
		{
			ID:                   VariantStroopInk,
			Gate:                 GateCircle,
			Response:             RespondOption,
			Dwell:                time.Second,
			Trials:               20,
			PracticeTrials:       5,
			Slots:                20,
			InkStimulus:          true,
			CongruentProbability: 0.2,
		},
	}
}

func LookupVariant(id VariantID) (Variant, error) {
	for _, v := range Variants() {
		if v.ID == id {
			return v, nil
		}
	}
	return Variant{}, goerr.Wrap(ErrUnknownVariant, "lookup variant", goerr.V("variant", id))
}
