package selfanalysis

import (
	"errors"
	"testing"
)

func TestValidateChain(t *testing.T) {
	if err := ValidateChain(); err != nil {
		t.Fatalf("ValidateChain: %v", err)
	}
}

func TestContractChainVisitsEveryStepOnce(t *testing.T) {
	seen := map[Step]int{}
	cur := FirstStep()
	for i := 0; i < 10 && cur != StepFin; i++ {
		c, err := GetContract(cur)
		if err != nil {
			t.Fatalf("GetContract(%s): %v", cur, err)
		}
		seen[cur]++
		cur = c.NextStep
	}
	if cur != StepFin {
		t.Fatalf("chain did not end at FIN, stopped at %s", cur)
	}
	for _, st := range Sequence() {
		if seen[st] != 1 {
			t.Fatalf("step %s visited %d times", st, seen[st])
		}
	}
	if len(seen) != 6 {
		t.Fatalf("expected 6 steps, visited %d", len(seen))
	}
}

func TestValidateChainRejectsBrokenTables(t *testing.T) {
	clone := func() map[Step]StepContract {
		out := make(map[Step]StepContract, len(contracts))
		for k, v := range contracts {
			out[k] = v
		}
		return out
	}

	cycle := clone()
	c := cycle[StepGap]
	c.NextStep = StepMotivation
	cycle[StepGap] = c
	if err := validateChain(cycle); err == nil {
		t.Fatalf("expected cycle to be rejected")
	}

	skip := clone()
	c = skip[StepHistory]
	c.NextStep = StepVision
	skip[StepHistory] = c
	if err := validateChain(skip); err == nil {
		t.Fatalf("expected skipped step to be rejected")
	}

	missing := clone()
	delete(missing, StepVision)
	if err := validateChain(missing); err == nil {
		t.Fatalf("expected missing contract to be rejected")
	}

	forward := clone()
	c = forward[StepMotivation]
	c.ContextSteps = []Step{StepGap}
	forward[StepMotivation] = c
	if err := validateChain(forward); err == nil {
		t.Fatalf("expected context from a later step to be rejected")
	}
}

func TestGetContractUnknownStep(t *testing.T) {
	for _, st := range []Step{StepFin, StepStay, "PLANNING", ""} {
		_, err := GetContract(st)
		var unknown *UnknownStepError
		if !errors.As(err, &unknown) {
			t.Fatalf("GetContract(%q): expected UnknownStepError, got %v", st, err)
		}
	}
}

func TestRequiredFieldsUsesListNotation(t *testing.T) {
	c, err := GetContract(StepHistory)
	if err != nil {
		t.Fatalf("GetContract: %v", err)
	}
	got := c.RequiredFields()
	want := []string{"timeline", "timeline[].year", "timeline[].event", "timeline[].skills", "timeline[].values", "question"}
	if len(got) != len(want) {
		t.Fatalf("RequiredFields: expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("RequiredFields[%d]: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestSchemaCoversRequiredFields(t *testing.T) {
	for _, st := range Sequence() {
		schema, err := Schema(st)
		if err != nil {
			t.Fatalf("Schema(%s): %v", st, err)
		}
		props, _ := schema["properties"].(map[string]any)
		c, _ := GetContract(st)
		for _, r := range c.Rules {
			if _, ok := props[r.Name]; !ok {
				t.Fatalf("Schema(%s): missing property %s", st, r.Name)
			}
		}
		next, _ := props[NextStepField].(map[string]any)
		enum, _ := next["enum"].([]any)
		if len(enum) != 2 || enum[0] != string(c.NextStep) || enum[1] != string(StepStay) {
			t.Fatalf("Schema(%s): unexpected next_step enum %v", st, enum)
		}
	}
	if _, err := Schema(StepFin); err == nil {
		t.Fatalf("Schema(FIN): expected error")
	}
}

func TestParseStateStep(t *testing.T) {
	if st, err := ParseStateStep(" gap "); err != nil || st != StepGap {
		t.Fatalf("ParseStateStep(gap): got %q, %v", st, err)
	}
	if st, err := ParseStateStep("FIN"); err != nil || st != StepFin {
		t.Fatalf("ParseStateStep(FIN): got %q, %v", st, err)
	}
	if _, err := ParseStateStep("STAY"); err == nil {
		t.Fatalf("ParseStateStep(STAY): expected error")
	}
}
