package results

import (
	"strconv"

	"github.com/GermanButtiero/reaction-time/internal/experiment"
)

const (
	TimeLayout = "2006-01-02 15:04:05"

	correctMark   = "Correct"
	incorrectMark = "Incorrect"
)

var metadataColumns = []string{"id", "trial", "gender", "group", "age", "time", "session_id", "variant", "completed"}

// Header returns the column names for a table with the given number of
// per-trial slots.
func Header(slots int) []string {
	h := make([]string, 0, len(metadataColumns)+3*slots)
	h = append(h, metadataColumns...)
	for _, prefix := range []string{"reaction_time_", "correctness_", "trial_type_"} {
		for i := 1; i <= slots; i++ {
			h = append(h, prefix+strconv.Itoa(i))
		}
	}
	return h
}

// Row renders a session as one record, padding the per-trial groups with
// empty cells up to slots.
func Row(s *experiment.Session, slots int) []string {
	p := s.Participant
	row := []string{
		p.ID,
		strconv.Itoa(p.TrialNumber),
		p.Gender,
		p.Group,
		strconv.Itoa(p.Age),
		s.StartedAt.Format(TimeLayout),
		s.ID.String(),
		string(s.Variant),
		strconv.Itoa(len(s.Results)),
	}

	times := make([]string, slots)
	marks := make([]string, slots)
	types := make([]string, slots)
	for i, r := range s.Results {
		if i >= slots {
			break
		}
		times[i] = strconv.FormatFloat(r.Seconds(), 'f', 6, 64)
		marks[i] = incorrectMark
		if r.Correct {
			marks[i] = correctMark
		}
		types[i] = string(r.Type)
	}

	row = append(row, times...)
	row = append(row, marks...)
	return append(row, types...)
}
