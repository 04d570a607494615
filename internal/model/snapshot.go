package model

// AttemptSnapshot is the session-scoped progress record for one attempt,
// stored under the key "exam-progress-{employeeID}-{examID}". It is written
// on every answer change and on every persistence tick, and deleted as soon
// as the attempt is submitted.
//
// TimeLeft is the in-memory countdown at the moment of the write; resume
// logic never trusts it alone but re-derives remaining time from StartTime
// (epoch milliseconds of the write), so paused or throttled clients cannot
// gain time.
type AttemptSnapshot struct {
	Answers   map[string]int `json:"answers"`
	TimeLeft  int            `json:"time_left"`
	StartTime int64          `json:"start_time"`
}

// Remaining derives the seconds left at nowMillis, clamped at zero.
func (s *AttemptSnapshot) Remaining(nowMillis int64) int {
	elapsed := int((nowMillis - s.StartTime) / 1000)
	remaining := s.TimeLeft - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}
