package sim

// EventTag identifies the handler for a scheduled event. The set is
// closed: the run loop drops anything it does not recognise.
type EventTag string

const (
	TagGenerateTrain    EventTag = "generate_train"
	TagDepart           EventTag = "depart"
	TagEnterBlock       EventTag = "enter_block"
	TagExitBlock        EventTag = "exit_block"
	TagFreeBlock        EventTag = "free_block"
	TagResumeCheck      EventTag = "resume_check"
	TagEnterStation     EventTag = "enter_station"
	TagArrive           EventTag = "arrive"
	TagStartDisruption  EventTag = "start_disruption"
	TagEndDisruption    EventTag = "end_disruption"
	TagRandomEventCheck EventTag = "check_for_random_event"
)

// knownTags is the closed set the dispatcher accepts.
var knownTags = map[EventTag]bool{
	TagGenerateTrain:    true,
	TagDepart:           true,
	TagEnterBlock:       true,
	TagExitBlock:        true,
	TagFreeBlock:        true,
	TagResumeCheck:      true,
	TagEnterStation:     true,
	TagArrive:           true,
	TagStartDisruption:  true,
	TagEndDisruption:    true,
	TagRandomEventCheck: true,
}

// Event is a scheduled simulation event. Sequence numbers are assigned
// by Simulator.schedule on insertion; together with the timestamp they
// give a total order over the queue.
type Event interface {
	Timestamp() int64
	Seq() uint64
	Tag() EventTag
	Execute(sim *Simulator)

	setSeq(seq uint64)
}

// BaseEvent provides the common event fields.
type BaseEvent struct {
	timestamp int64
	seq       uint64
	tag       EventTag
}

func newBaseEvent(timestamp int64, tag EventTag) BaseEvent {
	return BaseEvent{timestamp: timestamp, tag: tag}
}

func (e *BaseEvent) Timestamp() int64 { return e.timestamp }

func (e *BaseEvent) Seq() uint64 { return e.seq }

func (e *BaseEvent) Tag() EventTag { return e.tag }

func (e *BaseEvent) setSeq(seq uint64) { e.seq = seq }

// legMeta is the journey state a train carries from event to event:
// where it is on its route, how fast it entered the current block, and
// which single-line sections it currently holds.
type legMeta struct {
	SectionIdx   int
	BlockIdx     int
	EntrySpeed   float64 // m/s at block entry
	ExitSpeed    float64 // m/s at block exit, set by enter_block
	ReservedPath []SectionKey
}

// GenerateTrainEvent introduces a train into the simulation at its
// scheduled departure time.
type GenerateTrainEvent struct {
	BaseEvent
	TrainID string
}

func NewGenerateTrainEvent(timestamp int64, trainID string) *GenerateTrainEvent {
	return &GenerateTrainEvent{BaseEvent: newBaseEvent(timestamp, TagGenerateTrain), TrainID: trainID}
}

func (e *GenerateTrainEvent) Execute(sim *Simulator) {
	sim.handleGenerateTrain(e.TrainID)
}

// DepartEvent fires when a train leaves a platform (or starts its
// journey, for SectionIdx 0).
type DepartEvent struct {
	BaseEvent
	TrainID string
	Meta    legMeta
}

func NewDepartEvent(timestamp int64, trainID string, meta legMeta) *DepartEvent {
	return &DepartEvent{BaseEvent: newBaseEvent(timestamp, TagDepart), TrainID: trainID, Meta: meta}
}

func (e *DepartEvent) Execute(sim *Simulator) {
	sim.handleDepart(e.TrainID, e.Meta)
}

// EnterBlockEvent attempts to move the train's head into a block.
type EnterBlockEvent struct {
	BaseEvent
	TrainID string
	Meta    legMeta
}

func NewEnterBlockEvent(timestamp int64, trainID string, meta legMeta) *EnterBlockEvent {
	return &EnterBlockEvent{BaseEvent: newBaseEvent(timestamp, TagEnterBlock), TrainID: trainID, Meta: meta}
}

func (e *EnterBlockEvent) Execute(sim *Simulator) {
	sim.handleEnterBlock(e.TrainID, e.Meta)
}

// ExitBlockEvent fires when the train's head reaches the end of a block.
type ExitBlockEvent struct {
	BaseEvent
	TrainID string
	Meta    legMeta
}

func NewExitBlockEvent(timestamp int64, trainID string, meta legMeta) *ExitBlockEvent {
	return &ExitBlockEvent{BaseEvent: newBaseEvent(timestamp, TagExitBlock), TrainID: trainID, Meta: meta}
}

func (e *ExitBlockEvent) Execute(sim *Simulator) {
	sim.handleExitBlock(e.TrainID, e.Meta)
}

// FreeBlockEvent fires when the train's rear has cleared a block.
type FreeBlockEvent struct {
	BaseEvent
	TrainID  string
	Section  SectionKey
	BlockID  string
	BlockIdx int
}

func NewFreeBlockEvent(timestamp int64, trainID string, section SectionKey, blockID string, blockIdx int) *FreeBlockEvent {
	return &FreeBlockEvent{
		BaseEvent: newBaseEvent(timestamp, TagFreeBlock),
		TrainID:   trainID,
		Section:   section,
		BlockID:   blockID,
		BlockIdx:  blockIdx,
	}
}

func (e *FreeBlockEvent) Execute(sim *Simulator) {
	sim.handleFreeBlock(e.TrainID, e.Section, e.BlockID, e.BlockIdx)
}

// ResumeCheckEvent re-attempts a block entry for a train that was
// parked at a signal.
type ResumeCheckEvent struct {
	BaseEvent
	TrainID string
	Meta    legMeta
}

func NewResumeCheckEvent(timestamp int64, trainID string, meta legMeta) *ResumeCheckEvent {
	return &ResumeCheckEvent{BaseEvent: newBaseEvent(timestamp, TagResumeCheck), TrainID: trainID, Meta: meta}
}

func (e *ResumeCheckEvent) Execute(sim *Simulator) {
	sim.handleResumeCheck(e.TrainID, e.Meta)
}

// EnterStationEvent fires when a train reaches an intermediate station
// and requests a platform.
type EnterStationEvent struct {
	BaseEvent
	TrainID string
	Meta    legMeta
}

func NewEnterStationEvent(timestamp int64, trainID string, meta legMeta) *EnterStationEvent {
	return &EnterStationEvent{BaseEvent: newBaseEvent(timestamp, TagEnterStation), TrainID: trainID, Meta: meta}
}

func (e *EnterStationEvent) Execute(sim *Simulator) {
	sim.handleEnterStation(e.TrainID, e.Meta)
}

// ArriveEvent fires when a train reaches its terminal station.
type ArriveEvent struct {
	BaseEvent
	TrainID string
	Meta    legMeta
}

func NewArriveEvent(timestamp int64, trainID string, meta legMeta) *ArriveEvent {
	return &ArriveEvent{BaseEvent: newBaseEvent(timestamp, TagArrive), TrainID: trainID, Meta: meta}
}

func (e *ArriveEvent) Execute(sim *Simulator) {
	sim.handleArrive(e.TrainID, e.Meta)
}

// StartDisruptionEvent applies a disruption to both directions of its
// section pair.
type StartDisruptionEvent struct {
	BaseEvent
	Disruption *Disruption
}

func NewStartDisruptionEvent(timestamp int64, d *Disruption) *StartDisruptionEvent {
	return &StartDisruptionEvent{BaseEvent: newBaseEvent(timestamp, TagStartDisruption), Disruption: d}
}

func (e *StartDisruptionEvent) Execute(sim *Simulator) {
	sim.handleStartDisruption(e.Disruption)
}

// EndDisruptionEvent removes a disruption record; idempotent when the
// record is already gone.
type EndDisruptionEvent struct {
	BaseEvent
	Disruption *Disruption
}

func NewEndDisruptionEvent(timestamp int64, d *Disruption) *EndDisruptionEvent {
	return &EndDisruptionEvent{BaseEvent: newBaseEvent(timestamp, TagEndDisruption), Disruption: d}
}

func (e *EndDisruptionEvent) Execute(sim *Simulator) {
	sim.handleEndDisruption(e.Disruption)
}

// RandomEventCheckEvent periodically rolls for a new random disruption
// and always reschedules itself.
type RandomEventCheckEvent struct {
	BaseEvent
}

func NewRandomEventCheckEvent(timestamp int64) *RandomEventCheckEvent {
	return &RandomEventCheckEvent{BaseEvent: newBaseEvent(timestamp, TagRandomEventCheck)}
}

func (e *RandomEventCheckEvent) Execute(sim *Simulator) {
	sim.handleRandomEventCheck()
}
