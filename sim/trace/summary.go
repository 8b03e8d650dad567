package trace

// Summary aggregates statistics from an EventTrace.
type Summary struct {
	TotalRecords int
	ByEvent      map[string]int
	TrainsSeen   int
}

// Summarize computes aggregate statistics from a trace. Safe for nil
// traces (returns zero-value fields).
func Summarize(t *EventTrace) *Summary {
	s := &Summary{ByEvent: make(map[string]int)}
	if t == nil {
		return s
	}
	s.TotalRecords = len(t.records)
	for _, r := range t.records {
		s.ByEvent[r.Event]++
	}
	s.TrainsSeen = len(t.byTrain)
	return s
}
