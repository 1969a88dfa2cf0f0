package selfanalysis

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const promptsEnv = "SELF_ANALYSIS_PROMPTS_YAML"

//go:embed prompts.yaml
var promptsFS embed.FS

type yamlPromptSpec struct {
	Version int              `yaml:"version"`
	Persona string           `yaml:"persona"`
	Steps   []yamlStepPrompt `yaml:"steps"`
}

type yamlStepPrompt struct {
	Step         string `yaml:"step"`
	Goal         string `yaml:"goal"`
	Instructions string `yaml:"instructions"`
}

// StepPrompt is the instruction template of one step agent.
type StepPrompt struct {
	Step         Step
	Goal         string
	Instructions string
}

// PromptSet holds the persona shared by every step plus one prompt per step.
type PromptSet struct {
	Persona string
	Steps   map[Step]StepPrompt
}

// For returns the prompt of step.
func (p *PromptSet) For(step Step) (StepPrompt, error) {
	if p == nil {
		return StepPrompt{}, errors.New("prompt set not loaded")
	}
	sp, ok := p.Steps[step]
	if !ok {
		return StepPrompt{}, &UnknownStepError{Step: string(step)}
	}
	return sp, nil
}

// LoadPrompts reads prompts from SELF_ANALYSIS_PROMPTS_YAML when set,
// else from the embedded prompts.yaml.
func LoadPrompts() (*PromptSet, error) {
	data, err := readPrompts()
	if err != nil {
		return nil, err
	}
	return ParsePrompts(data)
}

func readPrompts() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(promptsEnv)); path != "" {
		return os.ReadFile(path)
	}
	return promptsFS.ReadFile("prompts.yaml")
}

// ParsePrompts decodes a prompt file and requires exactly one entry per pipeline step.
func ParsePrompts(data []byte) (*PromptSet, error) {
	var spec yamlPromptSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("decode prompts: %w", err)
	}
	if strings.TrimSpace(spec.Persona) == "" {
		return nil, errors.New("prompts: missing persona")
	}
	set := &PromptSet{
		Persona: strings.TrimSpace(spec.Persona),
		Steps:   make(map[Step]StepPrompt, len(spec.Steps)),
	}
	for _, sp := range spec.Steps {
		step := Step(strings.ToUpper(strings.TrimSpace(sp.Step)))
		if !step.IsPipelineStep() {
			return nil, &UnknownStepError{Step: sp.Step}
		}
		if _, dup := set.Steps[step]; dup {
			return nil, fmt.Errorf("prompts: duplicate step %s", step)
		}
		if strings.TrimSpace(sp.Instructions) == "" {
			return nil, fmt.Errorf("prompts: step %s has no instructions", step)
		}
		set.Steps[step] = StepPrompt{
			Step:         step,
			Goal:         strings.TrimSpace(sp.Goal),
			Instructions: strings.TrimSpace(sp.Instructions),
		}
	}
	for _, step := range sequence {
		if _, ok := set.Steps[step]; !ok {
			return nil, fmt.Errorf("prompts: missing step %s", step)
		}
	}
	return set, nil
}
