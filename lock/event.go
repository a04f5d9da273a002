package lock

// EventType identifies what happened in the controller.
type EventType int

const (
	EventMotorStart EventType = iota
	EventMotorStop
	EventObstacle
	EventLockAborted
	EventSecurityTimeout
	EventCalibration
)

var eventNames = []string{"motor-start", "motor-stop", "obstacle", "lock-aborted", "security-timeout", "calibration"}

func (e EventType) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[e]
}

// Event is reported to the Observer on every controller transition.
// Fields not relevant to the event type are left at their zero value.
type Event struct {
	Type        EventType
	Operation   Operation
	Position    Position
	Previous    Position
	Requested   int // Target pulses at motor start
	Pulses      int // Pulses counted at stop or stall
	Calibration CalibrationState
	Lengths     Lengths
}

// Observer receives controller events. It is called from the control loop
// and must not block.
type Observer func(Event)
