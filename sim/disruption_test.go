package sim

import "testing"

func disruptionNetwork() (*Simulator, *Section, *Section) {
	forward := NewSection("A", "B", LineDouble, 10, 100, SignallingAbsolute, 0)
	reverse := NewSection("B", "A", LineDouble, 10, 100, SignallingAbsolute, 0)
	sections := map[SectionKey]*Section{forward.Key(): forward, reverse.Key(): reverse}
	return newTestSim(nil, sections), forward, reverse
}

func TestDisruptionAppliesToBothDirections(t *testing.T) {
	s, forward, reverse := disruptionNetwork()
	d := &Disruption{SectionU: "A", SectionV: "B", StartTimeS: 0, EndTimeS: 100, SpeedFactor: 0.5}

	s.handleStartDisruption(d)
	if forward.VmaxKmph != 50 || reverse.VmaxKmph != 50 {
		t.Errorf("vmax = %v/%v, want 50/50", forward.VmaxKmph, reverse.VmaxKmph)
	}

	s.handleEndDisruption(d)
	if forward.VmaxKmph != 100 || reverse.VmaxKmph != 100 {
		t.Errorf("vmax = %v/%v, want restored 100/100", forward.VmaxKmph, reverse.VmaxKmph)
	}
}

func TestDisruptionUnknownSectionIsNoOp(t *testing.T) {
	s, _, _ := disruptionNetwork()
	d := &Disruption{SectionU: "X", SectionV: "Y", StartTimeS: 0, EndTimeS: 100, SpeedFactor: 0.5}

	s.handleStartDisruption(d)
	s.handleEndDisruption(d)
}

// TestScheduledDisruptionLifecycle pushes the paired events through the
// queue and checks the section is whole again afterwards.
func TestScheduledDisruptionLifecycle(t *testing.T) {
	s, forward, _ := disruptionNetwork()
	d := &Disruption{SectionU: "A", SectionV: "B", StartTimeS: 100, EndTimeS: 400, SpeedFactor: 0.25}

	s.ScheduleDisruption(d)
	s.Run()

	if s.Clock != 400 {
		t.Errorf("clock = %d, want 400", s.Clock)
	}
	if forward.VmaxKmph != forward.OriginalVmaxKmph {
		t.Errorf("vmax = %v, want restored %v", forward.VmaxKmph, forward.OriginalVmaxKmph)
	}

	var events []string
	for _, r := range s.Trace.Records() {
		if r.TrainID == "System" {
			events = append(events, r.Event)
		}
	}
	want := []string{"DISRUPTION_START", "DISRUPTION_START", "DISRUPTION_END", "DISRUPTION_END"}
	if len(events) != len(want) {
		t.Fatalf("system events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("system events = %v, want %v", events, want)
		}
	}
}

// TestRandomEventCheckSchedulesPair forces a hit and inspects the
// scheduled start/end pair.
func TestRandomEventCheckSchedulesPair(t *testing.T) {
	forward := NewSection("A", "B", LineDouble, 10, 100, SignallingAbsolute, 0)
	reverse := NewSection("B", "A", LineDouble, 10, 100, SignallingAbsolute, 0)
	sections := map[SectionKey]*Section{forward.Key(): forward, reverse.Key(): reverse}

	sc := DefaultScenario()
	sc.Seed = 7
	sc.RandomEventProbability = 1.0
	s := NewSimulator(nil, sections, sc)

	s.handleRandomEventCheck()

	var start *StartDisruptionEvent
	var end *EndDisruptionEvent
	checks := 0
	for s.queue.Len() > 0 {
		switch e := s.queue.PopNext().(type) {
		case *StartDisruptionEvent:
			start = e
		case *EndDisruptionEvent:
			end = e
		case *RandomEventCheckEvent:
			checks++
		}
	}
	if checks != 1 {
		t.Errorf("reschedules = %d, want 1", checks)
	}
	if start == nil || end == nil {
		t.Fatal("expected a start/end disruption pair")
	}
	if start.Disruption != end.Disruption {
		t.Error("start and end must share the disruption record")
	}
	d := start.Disruption
	if d.SpeedFactor < 0.2 || d.SpeedFactor > 0.7 {
		t.Errorf("factor = %v, want within [0.2, 0.7]", d.SpeedFactor)
	}
	dur := end.Timestamp() - start.Timestamp()
	if dur < DefaultScenario().MinDisruptionDurationS || dur > DefaultScenario().MaxDisruptionDurationS {
		t.Errorf("duration = %d, want within [%d, %d]", dur,
			DefaultScenario().MinDisruptionDurationS, DefaultScenario().MaxDisruptionDurationS)
	}
	if d.SectionU != "A" || d.SectionV != "B" {
		t.Errorf("target = %s-%s, want the undirected key A-B", d.SectionU, d.SectionV)
	}
}

// TestRandomEventCheckNoSections still reschedules itself on an empty
// network.
func TestRandomEventCheckNoSections(t *testing.T) {
	sc := DefaultScenario()
	sc.Seed = 7
	sc.RandomEventProbability = 1.0
	s := NewSimulator(nil, map[SectionKey]*Section{}, sc)

	s.handleRandomEventCheck()

	if s.queue.Len() != 1 {
		t.Errorf("queue length = %d, want just the rescheduled check", s.queue.Len())
	}
}

// TestAffectedByDisruptionLogged records the slow-order notice when a
// train enters a disrupted section.
func TestAffectedByDisruptionLogged(t *testing.T) {
	stations := map[string]*Station{
		"A": testStation("A", 1, 20, 0, 1, false),
		"B": testStation("B", 1, 20, 0, 1, false),
	}
	section := sectionWithBlocks("A", "B", LineDouble, 2, 1, 60)
	s := newTestSim(stations, map[SectionKey]*Section{section.Key(): section})

	d := &Disruption{SectionU: "A", SectionV: "B", StartTimeS: 0, EndTimeS: 10_000, SpeedFactor: 0.5}
	s.handleStartDisruption(d)

	t1 := NewTrain("T1", "express", 1, 60, 0.5, 0.5, 200, []string{"A", "B"}, 0)
	s.AddTrain(t1)
	s.Run()

	found := false
	for _, r := range s.Trace.Records() {
		if r.TrainID == "T1" && r.Event == "AFFECTED_BY_DISRUPTION" {
			found = true
		}
	}
	if !found {
		t.Error("expected an AFFECTED_BY_DISRUPTION record")
	}
	if t1.Status != StatusFinished {
		t.Errorf("status = %s, want finished", t1.Status)
	}
}
