package sim

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/rail-sim/rail-sim/sim/trace"
)

// systemActor is the trace identity for events not owned by any train.
const systemActor = "System"

// parkedTrain is a train stopped at the signal protecting a block,
// together with the journey state it resumes with.
type parkedTrain struct {
	TrainID string
	Meta    legMeta
}

// platformWaiter is a train queued for a platform at a station.
type platformWaiter struct {
	TrainID string
	Meta    legMeta
}

// holdRecord tracks an open hold: when it began and which resource the
// wait is attributed to. Re-opening an existing hold updates the cause
// but keeps the original start.
type holdRecord struct {
	Since int64
	Cause DelayCause
}

// Simulator is the core object holding virtual time, network state, and
// the event loop. It is single-threaded: handlers run to completion and
// all mutation happens inside them.
type Simulator struct {
	Clock   int64
	Horizon int64

	Stations map[string]*Station
	Sections map[SectionKey]*Section

	// Resource tables. BlockOccupancy maps block id → occupying train;
	// SectionReservations maps directed section → holder of a
	// single-line path.
	BlockOccupancy      map[string]string
	SectionReservations map[SectionKey]string
	WaitingAtBlock      map[string]parkedTrain
	WaitingForPlatform  map[string][]platformWaiter

	Trains map[string]*Train

	Trace *trace.EventTrace

	queue      *EventHeap
	nextSeq    uint64
	holds      map[string]*holdRecord
	trainOrder []string
	rng        *PartitionedRNG
	scenario   Scenario

	// undirected section keys (u < v), sorted, for deterministic random
	// disruption targeting
	undirectedKeys []SectionKey
}

// NewSimulator builds a simulator over a loaded network. Block
// generation must already have run. If the scenario enables random
// events, the first check is scheduled one interval in.
func NewSimulator(stations map[string]*Station, sections map[SectionKey]*Section, sc Scenario) *Simulator {
	s := &Simulator{
		Clock:               0,
		Horizon:             sc.HorizonS,
		Stations:            stations,
		Sections:            sections,
		BlockOccupancy:      make(map[string]string),
		SectionReservations: make(map[SectionKey]string),
		WaitingAtBlock:      make(map[string]parkedTrain),
		WaitingForPlatform:  make(map[string][]platformWaiter),
		Trains:              make(map[string]*Train),
		Trace:               trace.New(),
		queue:               NewEventHeap(),
		holds:               make(map[string]*holdRecord),
		rng:                 NewPartitionedRNG(sc.Seed),
		scenario:            sc,
	}

	for key := range sections {
		if key.U < key.V {
			s.undirectedKeys = append(s.undirectedKeys, key)
		}
	}
	sort.Slice(s.undirectedKeys, func(i, j int) bool {
		if s.undirectedKeys[i].U != s.undirectedKeys[j].U {
			return s.undirectedKeys[i].U < s.undirectedKeys[j].U
		}
		return s.undirectedKeys[i].V < s.undirectedKeys[j].V
	})

	if sc.RandomEvents {
		s.schedule(NewRandomEventCheckEvent(sc.RandomEventCheckIntervalS))
	}
	return s
}

// AddTrain registers a train and schedules its generation at its
// departure time.
func (s *Simulator) AddTrain(t *Train) {
	s.Trains[t.ID] = t
	s.schedule(NewGenerateTrainEvent(t.DepartTimeS, t.ID))
}

// ScheduleDisruption schedules the paired start/end events for a
// planned disruption. Both events share the record, so the end removes
// exactly what the start applied.
func (s *Simulator) ScheduleDisruption(d *Disruption) {
	s.schedule(NewStartDisruptionEvent(d.StartTimeS, d))
	s.schedule(NewEndDisruptionEvent(d.EndTimeS, d))
}

// schedule assigns the next sequence number and pushes the event. The
// monotone counter breaks ties among simultaneous events, giving
// insertion order.
func (s *Simulator) schedule(e Event) {
	s.nextSeq++
	e.setSeq(s.nextSeq)
	s.queue.Schedule(e)
}

// Run dispatches events until the queue empties, every generated train
// is finished, or the horizon (when set) is passed.
func (s *Simulator) Run() {
	for s.queue.Len() > 0 {
		ev := s.queue.PopNext()
		if ev.Timestamp() < s.Clock {
			panic(fmt.Sprintf("clock went backwards: %d < %d", ev.Timestamp(), s.Clock))
		}
		s.Clock = ev.Timestamp()
		if s.Horizon > 0 && s.Clock > s.Horizon {
			logrus.Infof("[tick %07d] Horizon reached", s.Clock)
			break
		}

		if !knownTags[ev.Tag()] {
			logrus.Warnf("[tick %07d] Unknown event tag %q, skipping", s.Clock, ev.Tag())
			s.Trace.Log(s.Clock, systemActor, "UNKNOWN_EVENT", string(ev.Tag()), "")
			continue
		}

		logrus.Debugf("[tick %07d] Executing %s", s.Clock, ev.Tag())
		ev.Execute(s)

		if s.allFinished() {
			logrus.Infof("[tick %07d] All trains have finished their journeys. Ending simulation.", s.Clock)
			break
		}
	}
	logrus.Infof("[tick %07d] Simulation ended", s.Clock)
}

func (s *Simulator) allFinished() bool {
	if len(s.trainOrder) == 0 {
		return false
	}
	for _, id := range s.trainOrder {
		if s.Trains[id].Status != StatusFinished {
			return false
		}
	}
	return true
}

// handleGenerateTrain adds a train to the active population and
// schedules its immediate departure.
func (s *Simulator) handleGenerateTrain(trainID string) {
	t := s.Trains[trainID]
	if t == nil {
		logrus.Warnf("generate_train for unknown train %q", trainID)
		return
	}
	s.trainOrder = append(s.trainOrder, trainID)
	s.Trace.Log(s.Clock, t.ID, "GENERATE_TRAIN", t.Route[0],
		fmt.Sprintf("Scheduled for departure at T=%ds", t.DepartTimeS))
	s.schedule(NewDepartEvent(s.Clock, t.ID, legMeta{}))
}

// train looks up a train by id, logging when the id is stale.
func (s *Simulator) train(trainID string) *Train {
	t := s.Trains[trainID]
	if t == nil {
		logrus.Warnf("event references unknown train %q", trainID)
	}
	return t
}

// openHold starts (or escalates) a hold for a train. An existing hold
// keeps its start time so the full wait is attributed when it closes;
// the cause is updated so attribution follows the most recent reason.
func (s *Simulator) openHold(t *Train, cause DelayCause) {
	if rec, ok := s.holds[t.ID]; ok {
		rec.Cause = cause
		return
	}
	s.holds[t.ID] = &holdRecord{Since: s.Clock, Cause: cause}
}

// closeHold closes an open hold, accumulating the wait into the cause
// bucket. Returns the wait duration and whether a hold was open.
func (s *Simulator) closeHold(t *Train) (int64, bool) {
	rec, ok := s.holds[t.ID]
	if !ok {
		return 0, false
	}
	delete(s.holds, t.ID)
	wait := s.Clock - rec.Since
	t.Delays[rec.Cause] += wait
	return wait, true
}

// HoldOpen reports whether a hold timer is currently running for the
// train (used by invariant checks in tests).
func (s *Simulator) HoldOpen(trainID string) bool {
	_, ok := s.holds[trainID]
	return ok
}

// sectionFor returns the directed section for a route hop, or nil when
// the static model has no such edge.
func (s *Simulator) sectionFor(t *Train, sectionIdx int) (*Section, SectionKey) {
	key := SectionKey{U: t.Route[sectionIdx], V: t.Route[sectionIdx+1]}
	return s.Sections[key], key
}

// moveToNextSection advances a train past the end of a section:
// releasing a completed single-line path, then either arriving (last
// hop) or entering the next station.
func (s *Simulator) moveToNextSection(t *Train, sectionIdx int, finalSpeedMS float64, meta legMeta) {
	if n := len(meta.ReservedPath); n > 0 {
		last := meta.ReservedPath[n-1]
		if last.V == t.Route[sectionIdx+1] {
			s.releasePath(t, meta.ReservedPath)
			s.Trace.Log(s.Clock, t.ID, "RELEASE_PATH", fmt.Sprintf("Path ending at %s", last.V), "")
			meta.ReservedPath = nil
		}
	}

	if sectionIdx+1 >= len(t.Route)-1 {
		s.schedule(NewArriveEvent(s.Clock, t.ID, meta))
		return
	}
	next := meta
	next.SectionIdx = sectionIdx + 1
	next.EntrySpeed = finalSpeedMS
	s.schedule(NewEnterStationEvent(s.Clock, t.ID, next))
}
