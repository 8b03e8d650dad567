package sim

import (
	"fmt"
	"io"
	"sort"
)

// TrainReport is the per-train slice of the final report.
type TrainReport struct {
	TrainID     string
	Priority    int
	Status      TrainStatus
	Delays      map[DelayCause]int64
	TotalDelayS int64
}

// Report aggregates a finished run: network throughput plus per-train
// delay attribution.
type Report struct {
	TotalTrains             int
	FinishedTrains          int
	TotalTimeS              int64
	ThroughputTrainsPerHour float64
	AverageDelayS           float64
	Trains                  []TrainReport
}

// Throughput converts a finished-train count over a time window to
// trains per hour. A zero window yields zero.
func Throughput(finished int, windowS int64) float64 {
	if windowS == 0 {
		return 0
	}
	return float64(finished) * 3600 / float64(windowS)
}

// AverageDelay is the mean total delay over the given train reports.
func AverageDelay(trains []TrainReport) float64 {
	if len(trains) == 0 {
		return 0
	}
	var total int64
	for _, t := range trains {
		total += t.TotalDelayS
	}
	return float64(total) / float64(len(trains))
}

// BuildReport snapshots the simulation outcome, trains sorted by id.
func (s *Simulator) BuildReport() *Report {
	r := &Report{
		TotalTrains: len(s.trainOrder),
		TotalTimeS:  s.Clock,
	}

	ids := append([]string(nil), s.trainOrder...)
	sort.Strings(ids)

	var finished []TrainReport
	for _, id := range ids {
		t := s.Trains[id]
		delays := make(map[DelayCause]int64, len(t.Delays))
		for cause, d := range t.Delays {
			delays[cause] = d
		}
		tr := TrainReport{
			TrainID:     t.ID,
			Priority:    t.Priority,
			Status:      t.Status,
			Delays:      delays,
			TotalDelayS: t.TotalDelayS(),
		}
		r.Trains = append(r.Trains, tr)
		if t.Status == StatusFinished {
			r.FinishedTrains++
			finished = append(finished, tr)
		}
	}

	r.ThroughputTrainsPerHour = Throughput(r.FinishedTrains, r.TotalTimeS)
	r.AverageDelayS = AverageDelay(finished)
	return r
}

// Print displays the report at the end of the simulation.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintln(w, "==================== SIMULATION REPORT ====================")
	fmt.Fprintln(w, "--- Overall Summary ---")
	fmt.Fprintf(w, "Total trains generated: %d\n", r.TotalTrains)
	fmt.Fprintf(w, "Finished trains: %d\n", r.FinishedTrains)
	fmt.Fprintf(w, "Total simulation time: %ds (%.2f hours)\n", r.TotalTimeS, float64(r.TotalTimeS)/3600)
	fmt.Fprintf(w, "Network Throughput: %.2f trains/hour\n", r.ThroughputTrainsPerHour)

	var unfinished []TrainReport
	printedHeader := false
	for _, t := range r.Trains {
		if t.Status != StatusFinished {
			unfinished = append(unfinished, t)
			continue
		}
		if !printedHeader {
			fmt.Fprintln(w, "--- Per-Train Delay Report ---")
			printedHeader = true
		}
		breakdown := ""
		for _, cause := range DelayCauses {
			if d := t.Delays[cause]; d > 0 {
				if breakdown != "" {
					breakdown += ", "
				}
				breakdown += fmt.Sprintf("%s: %ds", cause, d)
			}
		}
		if breakdown == "" {
			breakdown = "No delays"
		}
		fmt.Fprintf(w, "  - %s (Priority: %d): %ds delay (%s)\n", t.TrainID, t.Priority, t.TotalDelayS, breakdown)
	}
	if printedHeader {
		fmt.Fprintf(w, "Average delay for finished trains: %.1fs\n", r.AverageDelayS)
	}

	if len(unfinished) > 0 {
		fmt.Fprintln(w, "--- Unfinished Trains ---")
		for _, t := range unfinished {
			fmt.Fprintf(w, "  - %s (Status: %s)\n", t.TrainID, t.Status)
		}
	}
	fmt.Fprintln(w, "===========================================================")
}
