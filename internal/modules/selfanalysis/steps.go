package selfanalysis

import "strings"

// Step names one stage of the self-analysis pipeline.
type Step string

const (
	StepFuture     Step = "FUTURE"
	StepMotivation Step = "MOTIVATION"
	StepHistory    Step = "HISTORY"
	StepGap        Step = "GAP"
	StepVision     Step = "VISION"
	StepReflect    Step = "REFLECT"

	// StepFin is the terminal state of a session.
	StepFin Step = "FIN"
	// StepStay is the no-advance signal. It is never stored as a session state.
	StepStay Step = "STAY"
)

var sequence = []Step{
	StepFuture,
	StepMotivation,
	StepHistory,
	StepGap,
	StepVision,
	StepReflect,
}

// Sequence returns the pipeline steps in order, without the terminal marker.
func Sequence() []Step {
	out := make([]Step, len(sequence))
	copy(out, sequence)
	return out
}

// FirstStep is where every new session starts.
func FirstStep() Step { return sequence[0] }

// Index returns the position of s in the pipeline; FIN sorts after every step
// and anything else returns -1.
func (s Step) Index() int {
	for i, st := range sequence {
		if st == s {
			return i
		}
	}
	if s == StepFin {
		return len(sequence)
	}
	return -1
}

// IsPipelineStep reports whether s is one of the six conversational steps.
func (s Step) IsPipelineStep() bool {
	return s != StepFin && s.Index() >= 0
}

// IsState reports whether s may be stored as a session's current step.
func (s Step) IsState() bool { return s.Index() >= 0 }

func (s Step) String() string { return string(s) }

// ParseStateStep parses a stored session state (a pipeline step or FIN).
func ParseStateStep(raw string) (Step, error) {
	s := Step(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsState() {
		return "", &UnknownStepError{Step: raw}
	}
	return s, nil
}

// stay signals the agents have used over time; all collapse to StepStay.
var staySignals = map[string]bool{
	"":         true,
	"STAY":     true,
	"SAME":     true,
	"CONTINUE": true,
	"NONE":     true,
	"NULL":     true,
	"HOLD":     true,
}

func isStaySignal(raw string) bool {
	return staySignals[strings.ToUpper(strings.TrimSpace(raw))]
}
