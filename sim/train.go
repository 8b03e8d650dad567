package sim

// TrainStatus is the lifecycle state of a train.
type TrainStatus string

const (
	StatusWaiting  TrainStatus = "waiting"
	StatusRunning  TrainStatus = "running"
	StatusFinished TrainStatus = "finished"
)

// DelayCause names the resource a train was held on. Every hold has
// exactly one cause.
type DelayCause string

const (
	CauseSignal   DelayCause = "signal"
	CauseCrossing DelayCause = "crossing"
	CausePlatform DelayCause = "platform"
)

// DelayCauses lists all causes in report order.
var DelayCauses = []DelayCause{CauseSignal, CauseCrossing, CausePlatform}

// Train couples immutable motion parameters and a station-to-station
// route with the mutable journey status and per-cause delay buckets.
type Train struct {
	ID                  string
	Category            string
	Priority            int // lower value wins arbitration
	VmaxKmph            float64
	AccelerationMS2     float64
	BaseDecelerationMS2 float64
	LengthM             int
	Route               []string
	DepartTimeS         int64

	Status TrainStatus
	Delays map[DelayCause]int64
}

// NewTrain constructs a train in the waiting state with zeroed delay
// buckets.
func NewTrain(id, category string, priority int, vmaxKmph, accelMS2, decelMS2 float64, lengthM int, route []string, departTimeS int64) *Train {
	return &Train{
		ID:                  id,
		Category:            category,
		Priority:            priority,
		VmaxKmph:            vmaxKmph,
		AccelerationMS2:     accelMS2,
		BaseDecelerationMS2: decelMS2,
		LengthM:             lengthM,
		Route:               route,
		DepartTimeS:         departTimeS,
		Status:              StatusWaiting,
		Delays: map[DelayCause]int64{
			CauseSignal:   0,
			CauseCrossing: 0,
			CausePlatform: 0,
		},
	}
}

// TotalDelayS is the sum over all delay buckets.
func (t *Train) TotalDelayS() int64 {
	var total int64
	for _, d := range t.Delays {
		total += d
	}
	return total
}
