package sim

import "fmt"

// LineType distinguishes single-track sections (shared by both
// directions) from double-track ones.
type LineType string

const (
	LineSingle LineType = "single"
	LineDouble LineType = "double"
)

// SignallingType selects how a section is divided into blocks.
// Automatic sections get generated fixed blocks; absolute sections are
// one indivisible stretch.
type SignallingType string

const (
	SignallingAbsolute  SignallingType = "absolute"
	SignallingAutomatic SignallingType = "automatic"
)

// SectionKey identifies a directed section between two adjacent
// stations.
type SectionKey struct {
	U, V string
}

// Reversed returns the key of the opposite direction.
func (k SectionKey) Reversed() SectionKey {
	return SectionKey{U: k.V, V: k.U}
}

func (k SectionKey) String() string {
	return k.U + "-" + k.V
}

// Station is a node of the network. OccupiedPlatforms is the only
// mutable field; its length never exceeds NumPlatforms.
type Station struct {
	Code         string
	Name         string
	HasLoop      bool
	NumLoops     int
	NumPlatforms int
	MaxTrainLenM int
	IsJunction   bool
	DwellMeanS   int
	DwellStdDevS int

	OccupiedPlatforms []string
}

// HoldsPlatform reports whether the train currently occupies a platform
// at this station.
func (s *Station) HoldsPlatform(trainID string) bool {
	for _, id := range s.OccupiedPlatforms {
		if id == trainID {
			return true
		}
	}
	return false
}

// ReleasePlatform removes the train from the platform list and reports
// whether it was present.
func (s *Station) ReleasePlatform(trainID string) bool {
	for i, id := range s.OccupiedPlatforms {
		if id == trainID {
			s.OccupiedPlatforms = append(s.OccupiedPlatforms[:i], s.OccupiedPlatforms[i+1:]...)
			return true
		}
	}
	return false
}

// IsPathBoundary reports whether a single-line path may terminate at
// this station: it has at least one loop or is a junction.
func (s *Station) IsPathBoundary() bool {
	return s.NumLoops > 0 || s.IsJunction
}

// Block is a unit of track protected by one signal. IDs follow the
// convention <u>-<v>-B<i> with i increasing in the direction of travel.
type Block struct {
	ID       string
	LengthKm float64
}

// Disruption is a time-bounded multiplicative reduction of a section
// pair's maximum speed. Records are matched by identity when ended.
type Disruption struct {
	SectionU    string
	SectionV    string
	StartTimeS  int64
	EndTimeS    int64
	SpeedFactor float64
}

func (d *Disruption) String() string {
	return fmt.Sprintf("%s-%s x%.2f [%d,%d]", d.SectionU, d.SectionV, d.SpeedFactor, d.StartTimeS, d.EndTimeS)
}

// Section is a directed edge between two adjacent stations. Each
// undirected edge of the input materialises as two Section values.
type Section struct {
	U          string
	V          string
	LineType   LineType
	LengthKm   float64
	VmaxKmph   float64 // current effective limit
	Signalling SignallingType
	Gradient   float64 // percent

	OriginalVmaxKmph float64 // set once at construction
	Blocks           []*Block

	ActiveDisruptions []*Disruption
}

// NewSection constructs a directed section, pinning OriginalVmaxKmph to
// the construction-time limit.
func NewSection(u, v string, lineType LineType, lengthKm, vmaxKmph float64, signalling SignallingType, gradient float64) *Section {
	return &Section{
		U:                u,
		V:                v,
		LineType:         lineType,
		LengthKm:         lengthKm,
		VmaxKmph:         vmaxKmph,
		Signalling:       signalling,
		Gradient:         gradient,
		OriginalVmaxKmph: vmaxKmph,
	}
}

// Key returns the directed section key.
func (s *Section) Key() SectionKey {
	return SectionKey{U: s.U, V: s.V}
}

// AddDisruption registers an active disruption and recomputes the
// effective limit.
func (s *Section) AddDisruption(d *Disruption) {
	s.ActiveDisruptions = append(s.ActiveDisruptions, d)
	s.RecalculateVmax()
}

// RemoveDisruption drops the exact disruption record, if present, and
// recomputes the effective limit. Removing a record that was never
// applied is a no-op.
func (s *Section) RemoveDisruption(d *Disruption) {
	kept := s.ActiveDisruptions[:0]
	for _, active := range s.ActiveDisruptions {
		if active != d {
			kept = append(kept, active)
		}
	}
	s.ActiveDisruptions = kept
	s.RecalculateVmax()
}

// RecalculateVmax derives the effective speed limit from the active
// disruption set: the most severe factor wins regardless of arrival
// order, and an empty set restores the original limit.
func (s *Section) RecalculateVmax() {
	if len(s.ActiveDisruptions) == 0 {
		s.VmaxKmph = s.OriginalVmaxKmph
		return
	}
	worst := s.ActiveDisruptions[0].SpeedFactor
	for _, d := range s.ActiveDisruptions[1:] {
		if d.SpeedFactor < worst {
			worst = d.SpeedFactor
		}
	}
	s.VmaxKmph = s.OriginalVmaxKmph * worst
}
