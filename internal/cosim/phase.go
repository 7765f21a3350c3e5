package cosim

// Phase selects what a run does: settling drops freshly sampled terrain
// under gravity and writes a checkpoint; testing drives the rover over a
// checkpointed bed.
type Phase int

const (
	PhaseSettling Phase = iota
	PhaseTesting
)

// Default simulated durations per phase.
const (
	TimeSettling = 1.0
	TimeTesting  = 10.0
)

// DefaultSettleTime is the simulated time at which the chassis is released.
const DefaultSettleTime = 0.5

func (p Phase) String() string {
	switch p {
	case PhaseSettling:
		return "settling"
	case PhaseTesting:
		return "testing"
	}
	return "unknown"
}

// Duration returns the default simulated duration of the phase.
func (p Phase) Duration() float64 {
	if p == PhaseSettling {
		return TimeSettling
	}
	return TimeTesting
}

// chassisState is the staged-transition state machine. The only legal
// transition is chassisFixed -> chassisFree, taken exactly once.
type chassisState int

const (
	chassisFixed chassisState = iota
	chassisFree
)
