package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// handleStartDisruption applies a disruption to both directions of its
// section pair and recomputes their effective limits.
func (s *Simulator) handleStartDisruption(d *Disruption) {
	forward := SectionKey{U: d.SectionU, V: d.SectionV}
	for _, key := range []SectionKey{forward, forward.Reversed()} {
		section := s.Sections[key]
		if section == nil {
			continue
		}
		section.AddDisruption(d)
		s.Trace.Log(s.Clock, systemActor, "DISRUPTION_START", key.String(),
			fmt.Sprintf("Speed now %.0f km/h", section.VmaxKmph))
	}
}

// handleEndDisruption removes the exact disruption record from both
// directions. Ending a disruption that was never applied (or was
// already removed) is a no-op per direction.
func (s *Simulator) handleEndDisruption(d *Disruption) {
	forward := SectionKey{U: d.SectionU, V: d.SectionV}
	for _, key := range []SectionKey{forward, forward.Reversed()} {
		section := s.Sections[key]
		if section == nil {
			continue
		}
		section.RemoveDisruption(d)
		s.Trace.Log(s.Clock, systemActor, "DISRUPTION_END", key.String(),
			fmt.Sprintf("Speed now %.0f km/h", section.VmaxKmph))
	}
}

// handleRandomEventCheck rolls for a spontaneous disruption and always
// reschedules itself. Sections are drawn from the sorted undirected key
// list so the draw is independent of map iteration order.
func (s *Simulator) handleRandomEventCheck() {
	s.schedule(NewRandomEventCheckEvent(s.Clock + s.scenario.RandomEventCheckIntervalS))

	rng := s.rng.ForSubsystem(SubsystemDisruption)
	if rng.Float64() >= s.scenario.RandomEventProbability {
		return
	}
	if len(s.undirectedKeys) == 0 {
		return
	}

	key := s.undirectedKeys[rng.Intn(len(s.undirectedKeys))]
	span := s.scenario.MaxDisruptionDurationS - s.scenario.MinDisruptionDurationS
	duration := s.scenario.MinDisruptionDurationS
	if span > 0 {
		duration += rng.Int63n(span + 1)
	}
	factor := math.Round((0.2+rng.Float64()*0.5)*100) / 100

	d := &Disruption{
		SectionU:    key.U,
		SectionV:    key.V,
		StartTimeS:  s.Clock,
		EndTimeS:    s.Clock + duration,
		SpeedFactor: factor,
	}

	logrus.Debugf("[tick %07d] Random disruption on %s for %ds (factor %.2f)", s.Clock, key, duration, factor)
	s.Trace.Log(s.Clock, systemActor, "RANDOM_EVENT", key.String(),
		fmt.Sprintf("New disruption for %ds", duration))

	s.schedule(NewStartDisruptionEvent(s.Clock, d))
	s.schedule(NewEndDisruptionEvent(s.Clock+duration, d))
}
