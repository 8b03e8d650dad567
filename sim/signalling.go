package sim

import "fmt"

// Aspect is a signal colour computed from downstream occupancy; it is
// never stored.
type Aspect int

const (
	AspectGreen Aspect = iota
	AspectYellow
	AspectRed
)

func (a Aspect) String() string {
	switch a {
	case AspectGreen:
		return "green"
	case AspectYellow:
		return "yellow"
	case AspectRed:
		return "red"
	}
	return "unknown"
}

// aspect derives the three-aspect signal protecting a block: red when
// the block itself is occupied, yellow when the next block in the
// section is, green otherwise.
func (s *Simulator) aspect(section *Section, blockIdx int) Aspect {
	if s.BlockOccupancy[section.Blocks[blockIdx].ID] != "" {
		return AspectRed
	}
	if blockIdx+1 < len(section.Blocks) {
		if s.BlockOccupancy[section.Blocks[blockIdx+1].ID] != "" {
			return AspectYellow
		}
	}
	return AspectGreen
}

// handleEnterBlock moves a train's head into a block, running the
// single-line reservation on a section's first block and the signal
// check on every block.
func (s *Simulator) handleEnterBlock(trainID string, meta legMeta) {
	t := s.train(trainID)
	if t == nil {
		return
	}
	section, key := s.sectionFor(t, meta.SectionIdx)

	if section == nil || len(section.Blocks) == 0 {
		// A missing edge or an absolute section with no generated
		// blocks is a pass-through.
		s.moveToNextSection(t, meta.SectionIdx, meta.EntrySpeed, meta)
		return
	}

	if meta.BlockIdx == 0 && len(section.ActiveDisruptions) > 0 {
		s.Trace.Log(s.Clock, t.ID, "AFFECTED_BY_DISRUPTION", fmt.Sprintf("section %s", key),
			fmt.Sprintf("Speed limited to %.0f km/h (original: %.0f km/h)", section.VmaxKmph, section.OriginalVmaxKmph))
	}

	if meta.BlockIdx == 0 && section.LineType == LineSingle && len(meta.ReservedPath) == 0 {
		path := s.singleLinePath(t, meta.SectionIdx)
		if !s.pathClear(path, t.ID) {
			s.Trace.Log(s.Clock, t.ID, "HOLD_FOR_CROSSING", key.U, "Single-line path is reserved/occupied")
			s.openHold(t, CauseCrossing)
			meta.EntrySpeed = 0
			s.schedule(NewEnterBlockEvent(s.Clock+s.scenario.CrossingRetryIntervalS, t.ID, meta))
			return
		}
		if len(path) > 0 {
			for _, sec := range path {
				s.SectionReservations[sec] = t.ID
			}
			meta.ReservedPath = path
			s.Trace.Log(s.Clock, t.ID, "RESERVE_PATH",
				fmt.Sprintf("%s->%s", key.U, path[len(path)-1].V), "Path is clear")
		}
	}

	block := section.Blocks[meta.BlockIdx]
	aspect := s.aspect(section, meta.BlockIdx)

	if aspect == AspectRed {
		if _, held := s.holds[t.ID]; !held {
			s.Trace.Log(s.Clock, t.ID, "HOLD", fmt.Sprintf("before %s", block.ID), "Signal is Red")
		}
		s.openHold(t, CauseSignal)
		s.WaitingAtBlock[block.ID] = parkedTrain{TrainID: t.ID, Meta: meta}
		return
	}

	if wait, held := s.closeHold(t); held {
		s.Trace.Log(s.Clock, t.ID, "RELEASE", fmt.Sprintf("from before %s", block.ID),
			fmt.Sprintf("Waited %ds", wait))
	}

	s.BlockOccupancy[block.ID] = t.ID

	// Yellow never stops a moving train; it only sets a braking target
	// of zero, reached by the end of the block unless the block is
	// shorter than the stopping distance. A train entering at rest just
	// pulls away.
	var target *float64
	if aspect == AspectYellow && meta.EntrySpeed > minSpeedMS {
		zero := 0.0
		target = &zero
	}
	transit, exitSpeed := blockTransit(t, section, block, meta.EntrySpeed, target)
	meta.ExitSpeed = exitSpeed
	s.schedule(NewExitBlockEvent(s.Clock+transit, t.ID, meta))
}

// handleExitBlock emits the head-exit, schedules the rear clearance,
// and chains the next block entry or the section transition.
func (s *Simulator) handleExitBlock(trainID string, meta legMeta) {
	t := s.train(trainID)
	if t == nil {
		return
	}
	section, key := s.sectionFor(t, meta.SectionIdx)
	if section == nil || meta.BlockIdx >= len(section.Blocks) {
		s.moveToNextSection(t, meta.SectionIdx, meta.ExitSpeed, meta)
		return
	}
	block := section.Blocks[meta.BlockIdx]

	s.Trace.Log(s.Clock, t.ID, "EXIT_BLOCK_FRONT", block.ID, "")

	clearance := clearanceTime(t, meta.ExitSpeed)
	s.schedule(NewFreeBlockEvent(s.Clock+clearance, t.ID, key, block.ID, meta.BlockIdx))

	if meta.BlockIdx+1 < len(section.Blocks) {
		next := meta
		next.BlockIdx = meta.BlockIdx + 1
		next.EntrySpeed = meta.ExitSpeed
		s.schedule(NewEnterBlockEvent(s.Clock, t.ID, next))
		return
	}
	s.moveToNextSection(t, meta.SectionIdx, meta.ExitSpeed, meta)
}

// handleFreeBlock releases a block once the train's rear has cleared
// it, then wakes any train parked at the freed block or at the block
// behind it.
func (s *Simulator) handleFreeBlock(trainID string, key SectionKey, blockID string, blockIdx int) {
	if s.BlockOccupancy[blockID] != trainID {
		return
	}
	delete(s.BlockOccupancy, blockID)
	s.Trace.Log(s.Clock, trainID, "FREE_BLOCK_REAR", blockID, "")

	s.wakeParked(blockID)
	section := s.Sections[key]
	if section != nil && blockIdx > 0 && blockIdx-1 < len(section.Blocks) {
		s.wakeParked(section.Blocks[blockIdx-1].ID)
	}
}

// wakeParked pops the train parked at the signal protecting blockID,
// if any, and schedules its resume check at the current time.
func (s *Simulator) wakeParked(blockID string) {
	parked, ok := s.WaitingAtBlock[blockID]
	if !ok {
		return
	}
	delete(s.WaitingAtBlock, blockID)
	s.Trace.Log(s.Clock, parked.TrainID, "SIGNAL_UPDATE", fmt.Sprintf("for %s", blockID), "Block ahead cleared")
	s.schedule(NewResumeCheckEvent(s.Clock, parked.TrainID, parked.Meta))
}

// handleResumeCheck re-attempts the block entry the train was parked
// on. The entry handler re-derives the aspect, so a still-red signal
// simply parks the train again.
func (s *Simulator) handleResumeCheck(trainID string, meta legMeta) {
	s.Trace.Log(s.Clock, trainID, "RESUME_CHECK", fmt.Sprintf("at block %d", meta.BlockIdx), "Re-evaluating signal")
	s.schedule(NewEnterBlockEvent(s.Clock, trainID, meta))
}
