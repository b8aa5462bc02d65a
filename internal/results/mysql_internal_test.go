package results

import (
	"testing"
	"time"

	"github.com/GermanButtiero/reaction-time/internal/experiment"
	"github.com/m-mizutani/gt"
)

func TestToSessionRow(t *testing.T) {
	s := experiment.NewSession(experiment.Participant{
		ID: "12", TrialNumber: 2, Gender: "F", Age: 40, Group: "control",
	}, experiment.VariantStroop, false, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	s.Aborted = true
	s.Results = []experiment.TrialResult{
		{Index: 1, ReactionTime: 1500 * time.Millisecond, Correct: true, Choice: experiment.Red},
		{Index: 2, ReactionTime: 750 * time.Millisecond, Choice: experiment.Blue},
	}

	row := toSessionRow(s)
	gt.Equal(t, row.SessionID, s.ID.String())
	gt.Equal(t, row.ParticipantID, "12")
	gt.Equal(t, row.TrialNumber, 2)
	gt.Equal(t, row.Variant, "stroop")
	gt.Equal(t, row.Completed, 2)
	gt.True(t, row.Aborted)
	gt.Equal(t, len(row.Trials), 2)
	gt.Equal(t, row.Trials[0].ReactionTime, 1.5)
	gt.True(t, row.Trials[0].Correct)
	gt.Equal(t, row.Trials[1].Choice, "BLUE")
	gt.False(t, row.Trials[1].Correct)
	gt.Equal(t, row.Trials[1].TrialType, "")
}
