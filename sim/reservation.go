package sim

// singleLinePath computes the maximal contiguous run of single-line
// sections starting at the given route hop. The run ends at the first
// station that can stage a crossing (a loop or a junction), or at the
// route end.
func (s *Simulator) singleLinePath(t *Train, startSectionIdx int) []SectionKey {
	var path []SectionKey
	for i := startSectionIdx; i < len(t.Route)-1; i++ {
		key := SectionKey{U: t.Route[i], V: t.Route[i+1]}
		section := s.Sections[key]
		if section == nil || section.LineType != LineSingle {
			break
		}
		path = append(path, key)
		if dest := s.Stations[key.V]; dest != nil && dest.IsPathBoundary() {
			break
		}
	}
	return path
}

// pathClear reports whether every section of the path can be reserved
// by the train: neither direction is reserved by another train and no
// block of either direction is occupied by another train.
func (s *Simulator) pathClear(path []SectionKey, trainID string) bool {
	for _, key := range path {
		if holder, ok := s.SectionReservations[key]; ok && holder != trainID {
			return false
		}
		if holder, ok := s.SectionReservations[key.Reversed()]; ok && holder != trainID {
			return false
		}
		if s.blocksOccupiedByOther(key, trainID) || s.blocksOccupiedByOther(key.Reversed(), trainID) {
			return false
		}
	}
	return true
}

func (s *Simulator) blocksOccupiedByOther(key SectionKey, trainID string) bool {
	section := s.Sections[key]
	if section == nil {
		return false
	}
	for _, block := range section.Blocks {
		if occ := s.BlockOccupancy[block.ID]; occ != "" && occ != trainID {
			return true
		}
	}
	return false
}

// releasePath deletes the reservations of the path still held by the
// train. Entries taken over by another train are left alone.
func (s *Simulator) releasePath(t *Train, path []SectionKey) {
	for _, key := range path {
		if s.SectionReservations[key] == t.ID {
			delete(s.SectionReservations, key)
		}
	}
}
