package selfanalysis

import (
	"fmt"
)

// UnknownStepError is a configuration or programming fault: a step name outside the pipeline.
type UnknownStepError struct {
	Step string
}

func (e *UnknownStepError) Error() string {
	return fmt.Sprintf("unknown self-analysis step %q", e.Step)
}

// AgentCommunicationError is a transient step agent failure (timeout, rate limit, malformed output).
type AgentCommunicationError struct {
	Step  Step
	Cause error
}

func (e *AgentCommunicationError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("step agent %s: communication failed", e.Step)
	}
	return fmt.Sprintf("step agent %s: %v", e.Step, e.Cause)
}

func (e *AgentCommunicationError) Unwrap() error { return e.Cause }

// GuardrailViolation reports the first contract rule a payload broke.
type GuardrailViolation struct {
	Step   Step
	Field  string
	Reason string
}

func (e *GuardrailViolation) Error() string {
	return fmt.Sprintf("guardrail violation in %s: %s", e.Step, e.Reason)
}
