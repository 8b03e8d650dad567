package trace

import (
	"encoding/csv"
	"fmt"
	"os"
)

// EventTrace collects event records during a simulation and keeps a
// per-train index for last-event queries.
type EventTrace struct {
	records []Record
	byTrain map[string][]int
}

// New creates an EventTrace ready for recording.
func New() *EventTrace {
	return &EventTrace{
		records: make([]Record, 0),
		byTrain: make(map[string][]int),
	}
}

// Log appends an event record.
func (t *EventTrace) Log(time int64, trainID, event, location, reason string) {
	t.records = append(t.records, Record{
		Time:     time,
		TrainID:  trainID,
		Event:    event,
		Location: location,
		Reason:   reason,
	})
	t.byTrain[trainID] = append(t.byTrain[trainID], len(t.records)-1)
}

// Records returns the full record sequence in append order.
func (t *EventTrace) Records() []Record {
	return t.records
}

// Len returns the number of recorded events.
func (t *EventTrace) Len() int {
	return len(t.records)
}

// LastForTrain returns the most recent record for a train.
func (t *EventTrace) LastForTrain(trainID string) (Record, bool) {
	idxs := t.byTrain[trainID]
	if len(idxs) == 0 {
		return Record{}, false
	}
	return t.records[idxs[len(idxs)-1]], true
}

// ExportCSV writes the trace to a CSV file with a header row.
func (t *EventTrace) ExportCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}
	defer file.Close() //nolint:errcheck // flushed and checked via writer below

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"time", "train_id", "event", "location", "reason"}); err != nil {
		return fmt.Errorf("failed to write trace header: %w", err)
	}
	for _, r := range t.records {
		if err := writer.Write(r.csvRow()); err != nil {
			return fmt.Errorf("failed to write trace record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush trace file: %w", err)
	}
	return nil
}
