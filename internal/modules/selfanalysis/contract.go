package selfanalysis

import (
	"fmt"
)

type FieldType string

const (
	FieldString  FieldType = "string"
	FieldInteger FieldType = "integer"
	FieldNumber  FieldType = "number"
	FieldList    FieldType = "list"
	FieldObject  FieldType = "object"
)

// Range is an inclusive numeric bound.
type Range struct {
	Min float64
	Max float64
}

// FieldRule declares what one field of a step payload must look like.
// Zero values mean "no constraint" except that strings must be non-empty
// unless AllowEmpty is set, and fields are required unless Optional is set.
type FieldRule struct {
	Name     string
	Type     FieldType
	Optional bool

	// strings
	AllowEmpty  bool
	MaxRunes    int
	SingleToken bool
	Suffixes    []string
	Enum        []string

	// integers and numbers
	Range *Range

	// lists
	MinItems    int
	MaxItems    int
	UniqueItems bool
	SortedBy    string
	Elem        *FieldRule

	// objects
	Fields []FieldRule

	Description string
}

// StepContract is the output contract and successor of one step.
type StepContract struct {
	Step          Step
	Rules         []FieldRule
	QuestionField string
	NextStep      Step
	// ContextSteps are earlier steps whose notes the agent reads.
	ContextSteps []Step
}

// RequiredFields lists the paths of every non-optional field, in rule order.
// List elements use the "name[].field" notation.
func (c StepContract) RequiredFields() []string {
	out := []string{}
	var walk func(prefix string, rules []FieldRule)
	walk = func(prefix string, rules []FieldRule) {
		for _, r := range rules {
			if r.Optional {
				continue
			}
			path := joinPath(prefix, r.Name)
			out = append(out, path)
			switch {
			case r.Type == FieldObject:
				walk(path, r.Fields)
			case r.Type == FieldList && r.Elem != nil && r.Elem.Type == FieldObject:
				walk(path+"[]", r.Elem.Fields)
			}
		}
	}
	walk("", c.Rules)
	return out
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// GetContract returns the contract of a pipeline step.
func GetContract(step Step) (StepContract, error) {
	c, ok := contracts[step]
	if !ok {
		return StepContract{}, &UnknownStepError{Step: string(step)}
	}
	return c, nil
}

// ValidateChain follows NextStep from the first step and fails unless every
// pipeline step is visited exactly once and the walk ends at FIN.
func ValidateChain() error {
	return validateChain(contracts)
}

func validateChain(table map[Step]StepContract) error {
	if len(table) != len(sequence) {
		return fmt.Errorf("step contracts: expected %d contracts, got %d", len(sequence), len(table))
	}
	seen := map[Step]bool{}
	cur := FirstStep()
	for i := 0; i <= len(table); i++ {
		if cur == StepFin {
			break
		}
		c, ok := table[cur]
		if !ok {
			return &UnknownStepError{Step: string(cur)}
		}
		if c.Step != cur {
			return fmt.Errorf("step contracts: contract keyed %s declares step %s", cur, c.Step)
		}
		if seen[cur] {
			return fmt.Errorf("step contracts: cycle at %s", cur)
		}
		seen[cur] = true
		for _, dep := range c.ContextSteps {
			if dep.Index() < 0 || dep.Index() >= cur.Index() {
				return fmt.Errorf("step contracts: %s reads context from %s, which does not precede it", cur, dep)
			}
		}
		cur = c.NextStep
	}
	if cur != StepFin {
		return fmt.Errorf("step contracts: chain does not terminate at %s", StepFin)
	}
	if len(seen) != len(sequence) {
		return fmt.Errorf("step contracts: chain visits %d of %d steps", len(seen), len(sequence))
	}
	for i, st := range sequence {
		if !seen[st] {
			return fmt.Errorf("step contracts: %s is unreachable", st)
		}
		if i+1 < len(sequence) && table[st].NextStep != sequence[i+1] {
			return fmt.Errorf("step contracts: %s must lead to %s", st, sequence[i+1])
		}
	}
	return nil
}

func str(name string, maxRunes int) FieldRule {
	return FieldRule{Name: name, Type: FieldString, MaxRunes: maxRunes}
}

func strList(name string, min, max int) FieldRule {
	return FieldRule{
		Name:     name,
		Type:     FieldList,
		MinItems: min,
		MaxItems: max,
		Elem:     &FieldRule{Type: FieldString},
	}
}

func question() FieldRule {
	return FieldRule{
		Name:        "question",
		Type:        FieldString,
		Description: "the single question to ask the student next",
	}
}

// GapCategories are the allowed GAP categories.
var GapCategories = []string{"knowledge", "skill", "experience", "network", "mindset"}

// VisionSuffixes are the verb endings a vision statement may close with.
var VisionSuffixes = []string{"する", "なる"}

// MotivationEpisodeFields are the named parts of the MOTIVATION episode.
var MotivationEpisodeFields = []string{
	"situation", "trigger", "action", "obstacle", "support", "outcome", "emotion", "insight",
}

func motivationEpisode() FieldRule {
	fields := make([]FieldRule, 0, len(MotivationEpisodeFields))
	for _, name := range MotivationEpisodeFields {
		r := str(name, 0)
		switch name {
		case "emotion":
			r.SingleToken = true
			r.Description = "one word naming the feeling"
		case "insight":
			r.MaxRunes = 40
		}
		fields = append(fields, r)
	}
	return FieldRule{Name: "episode", Type: FieldObject, Fields: fields}
}

var contracts = map[Step]StepContract{
	StepFuture: {
		Step: StepFuture,
		Rules: []FieldRule{
			{Name: "future", Type: FieldString, MaxRunes: 30, Description: "short summary of the future the student wants"},
			{
				Name:     "values",
				Type:     FieldList,
				MinItems: 3,
				MaxItems: 3,
				Elem:     &FieldRule{Type: FieldString, MaxRunes: 4},
			},
			question(),
		},
		QuestionField: "question",
		NextStep:      StepMotivation,
	},
	StepMotivation: {
		Step: StepMotivation,
		Rules: []FieldRule{
			motivationEpisode(),
			question(),
		},
		QuestionField: "question",
		NextStep:      StepHistory,
		ContextSteps:  []Step{StepFuture},
	},
	StepHistory: {
		Step: StepHistory,
		Rules: []FieldRule{
			{
				Name:     "timeline",
				Type:     FieldList,
				MinItems: 1,
				SortedBy: "year",
				Elem: &FieldRule{Type: FieldObject, Fields: []FieldRule{
					{Name: "year", Type: FieldInteger},
					str("event", 0),
					{Name: "skills", Type: FieldList, MinItems: 1, MaxItems: 3, UniqueItems: true, Elem: &FieldRule{Type: FieldString}},
					{Name: "values", Type: FieldList, MinItems: 1, MaxItems: 3, UniqueItems: true, Elem: &FieldRule{Type: FieldString}},
				}},
			},
			question(),
		},
		QuestionField: "question",
		NextStep:      StepGap,
		ContextSteps:  []Step{StepFuture, StepMotivation},
	},
	StepGap: {
		Step: StepGap,
		Rules: []FieldRule{
			{
				Name:     "gaps",
				Type:     FieldList,
				MinItems: 3,
				MaxItems: 6,
				Elem: &FieldRule{Type: FieldObject, Fields: []FieldRule{
					{Name: "category", Type: FieldString, Enum: GapCategories},
					strList("root_causes", 1, 3),
					{Name: "severity", Type: FieldInteger, Range: &Range{Min: 1, Max: 5}},
					{Name: "urgency", Type: FieldInteger, Range: &Range{Min: 1, Max: 5}},
				}},
			},
			question(),
		},
		QuestionField: "question",
		NextStep:      StepVision,
		ContextSteps:  []Step{StepFuture, StepHistory},
	},
	StepVision: {
		Step: StepVision,
		Rules: []FieldRule{
			{Name: "vision", Type: FieldString, MaxRunes: 30, Suffixes: VisionSuffixes},
			{Name: "uniqueness", Type: FieldNumber, Range: &Range{Min: 0, Max: 1}},
			question(),
		},
		QuestionField: "question",
		NextStep:      StepReflect,
		ContextSteps:  []Step{StepFuture, StepMotivation, StepGap},
	},
	StepReflect: {
		Step: StepReflect,
		Rules: []FieldRule{
			strList("insights", 3, 5),
			strList("strengths", 3, 3),
			strList("growth_edges", 3, 3),
			strList("milestones", 1, 0),
			str("summary", 140),
			question(),
		},
		QuestionField: "question",
		NextStep:      StepFin,
		ContextSteps:  []Step{StepFuture, StepMotivation, StepHistory, StepGap, StepVision},
	},
}
