package sim

import (
	"fmt"
	"math"
	"sort"
)

// minDwellS is the floor on sampled dwell times.
const minDwellS = 15

// sampleDwell draws a dwell duration for a station from the dwell
// subsystem's Gaussian, clamped below at minDwellS.
func (s *Simulator) sampleDwell(station *Station) int64 {
	rng := s.rng.ForSubsystem(SubsystemDwell)
	dwell := math.Round(rng.NormFloat64()*float64(station.DwellStdDevS) + float64(station.DwellMeanS))
	if dwell < minDwellS {
		return minDwellS
	}
	return int64(dwell)
}

// handleEnterStation requests a platform for a train that has reached
// an intermediate station: dwell if one is free, otherwise join the
// priority waitlist.
func (s *Simulator) handleEnterStation(trainID string, meta legMeta) {
	t := s.train(trainID)
	if t == nil {
		return
	}
	code := t.Route[meta.SectionIdx]
	station := s.Stations[code]

	if wait, held := s.closeHold(t); held {
		s.Trace.Log(s.Clock, t.ID, "RELEASE_FROM_PLATFORM_HOLD", code, fmt.Sprintf("Waited %ds", wait))
	}

	if station == nil {
		// Unknown stop: skip arbitration but keep the journey alive.
		s.Trace.Log(s.Clock, t.ID, "UNKNOWN_STATION", code, "No station record; skipping platform arbitration")
		s.schedule(NewDepartEvent(s.Clock, t.ID, meta))
		return
	}

	if len(station.OccupiedPlatforms) < station.NumPlatforms {
		station.OccupiedPlatforms = append(station.OccupiedPlatforms, t.ID)
		dwell := s.sampleDwell(station)
		s.Trace.Log(s.Clock, t.ID, "ARRIVE_STATION", code, fmt.Sprintf("Platform available, Dwell:%ds", dwell))
		s.schedule(NewDepartEvent(s.Clock+dwell, t.ID, meta))
		return
	}

	s.openHold(t, CausePlatform)
	s.WaitingForPlatform[code] = append(s.WaitingForPlatform[code], platformWaiter{TrainID: t.ID, Meta: meta})
	s.Trace.Log(s.Clock, t.ID, "HOLD_FOR_PLATFORM", code, "All platforms occupied")
}

// handleDepart releases the platform (for mid-journey departures),
// hands it to the best waitlisted train, and sends the departing train
// into the first block of its next section.
func (s *Simulator) handleDepart(trainID string, meta legMeta) {
	t := s.train(trainID)
	if t == nil {
		return
	}

	if meta.SectionIdx > 0 {
		code := t.Route[meta.SectionIdx]
		if station := s.Stations[code]; station != nil && station.ReleasePlatform(t.ID) {
			s.Trace.Log(s.Clock, t.ID, "DEPART_STATION", code, "Platform freed")
			s.nudgePlatformWaitlist(code)
		}
	} else {
		t.Status = StatusRunning
		s.Trace.Log(s.Clock, t.ID, "DEPART_JOURNEY_START", t.Route[0], "")
	}

	if len(t.Route) > meta.SectionIdx+1 {
		next := meta
		next.BlockIdx = 0
		next.EntrySpeed = 0
		s.schedule(NewEnterBlockEvent(s.Clock, t.ID, next))
	}
}

// nudgePlatformWaitlist grants the freed platform to the waitlisted
// train with the lowest priority value. The sort is stable, so equal
// priorities drain in arrival order.
func (s *Simulator) nudgePlatformWaitlist(code string) {
	waitlist := s.WaitingForPlatform[code]
	if len(waitlist) == 0 {
		return
	}
	sort.SliceStable(waitlist, func(i, j int) bool {
		return s.Trains[waitlist[i].TrainID].Priority < s.Trains[waitlist[j].TrainID].Priority
	})
	next := waitlist[0]
	s.WaitingForPlatform[code] = waitlist[1:]
	s.Trace.Log(s.Clock, next.TrainID, "PLATFORM_AVAILABLE", code,
		fmt.Sprintf("Granted by priority %d", s.Trains[next.TrainID].Priority))
	s.schedule(NewEnterStationEvent(s.Clock, next.TrainID, next.Meta))
}

// handleArrive finishes a journey at the terminal station. The train
// briefly occupies and frees a platform so the waitlist nudge fires the
// same way it does on departure, then releases any held path.
func (s *Simulator) handleArrive(trainID string, meta legMeta) {
	t := s.train(trainID)
	if t == nil {
		return
	}
	dest := t.Route[len(t.Route)-1]
	t.Status = StatusFinished

	if station := s.Stations[dest]; station != nil {
		if !station.HoldsPlatform(t.ID) {
			station.OccupiedPlatforms = append(station.OccupiedPlatforms, t.ID)
		}
		station.ReleasePlatform(t.ID)
		s.Trace.Log(s.Clock, t.ID, "FREE_PLATFORM_ON_ARRIVAL", dest, "")
		s.nudgePlatformWaitlist(dest)
	}

	if len(meta.ReservedPath) > 0 {
		s.releasePath(t, meta.ReservedPath)
		s.Trace.Log(s.Clock, t.ID, "RELEASE_PATH", "Final release on arrival", "")
	}

	s.Trace.Log(s.Clock, t.ID, "ARRIVE_JOURNEY_END", dest,
		fmt.Sprintf("Total delay=%ds", t.TotalDelayS()))
}
