package selfanalysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Payload is the structured output of one step agent call.
type Payload map[string]any

// Question returns the trimmed value of field, or "" if it is missing or not a string.
func (p Payload) Question(field string) string {
	s, _ := p[field].(string)
	return strings.TrimSpace(s)
}

// ParsePayload extracts a JSON object from raw model text. Markdown code
// fences and chatter around the outermost braces are ignored.
func ParsePayload(text string) (Payload, error) {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```JSON")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model output")
	}
	var out Payload
	if err := json.Unmarshal([]byte(s[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}
	return out, nil
}

// StepOutput is one accepted step result, ready to persist.
type StepOutput struct {
	Step        Step
	SessionID   uuid.UUID
	Payload     Payload
	UserMessage string
	NextStep    Step
}

// newStepOutput resolves the transition and user-facing message for payload.
func newStepOutput(c StepContract, sessionID uuid.UUID, payload Payload) StepOutput {
	return StepOutput{
		Step:        c.Step,
		SessionID:   sessionID,
		Payload:     payload,
		UserMessage: payload.Question(c.QuestionField),
		NextStep:    resolveNext(c, payload),
	}
}

// resolveNext maps the optional next_step of a payload onto the contract:
// absent means the contract successor, stay synonyms and the current step
// mean StepStay. Anything else is treated as StepStay.
func resolveNext(c StepContract, payload Payload) Step {
	raw, ok := payload[NextStepField]
	if !ok || raw == nil {
		return c.NextStep
	}
	s, isStr := raw.(string)
	if !isStr || isStaySignal(s) {
		return StepStay
	}
	next := Step(strings.ToUpper(strings.TrimSpace(s)))
	if next == c.NextStep {
		return next
	}
	return StepStay
}
