package attendance

import "math"

// Summary aggregates one student's attendance across all recorded dates.
type Summary struct {
	Present    int     `json:"present"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Summarize computes per-student statistics over the full record set.
// Total counts every recorded class date, whether or not the student has an
// entry for it; a student with no entry on a date is not counted present.
// PRE: records maps date -> student name -> status
// POST: every name in students has an entry in the result; Percentage is 0
// when no dates are recorded, never NaN
func Summarize(students []string, records map[string]map[string]string) map[string]Summary {
	total := len(records)
	out := make(map[string]Summary, len(students))
	for _, name := range students {
		present := 0
		for _, day := range records {
			if day[name] == StatusPresent {
				present++
			}
		}
		pct := 0.0
		if total > 0 {
			pct = round2(float64(present) / float64(total) * 100)
		}
		out[name] = Summary{Present: present, Total: total, Percentage: pct}
	}
	return out
}

// round2 rounds to two decimal places, ties to the even hundredth.
func round2(f float64) float64 {
	return math.RoundToEven(f*100) / 100
}
