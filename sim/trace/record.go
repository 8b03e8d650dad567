// Package trace provides the structured event sink for simulation
// runs. It has no dependencies on sim/ and stores pure data types.
package trace

import "strconv"

// Record captures one logged simulation event. TrainID is "System" for
// events not owned by any train. Time is virtual seconds.
type Record struct {
	Time     int64
	TrainID  string
	Event    string
	Location string
	Reason   string
}

// csvRow renders the record for export.
func (r Record) csvRow() []string {
	return []string{
		strconv.FormatInt(r.Time, 10),
		r.TrainID,
		r.Event,
		r.Location,
		r.Reason,
	}
}
