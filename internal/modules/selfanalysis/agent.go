package selfanalysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/data/repos"
	types "github.com/itsuki0625/react-ai-chatapp-sub000/internal/domain"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/dbctx"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/logger"
)

// StepAgent produces the structured output of one step for one turn.
// Transport and decoding failures are reported as *AgentCommunicationError.
type StepAgent interface {
	Invoke(ctx context.Context, step Step, sessionID uuid.UUID, input string) (Payload, error)
}

// JSONGenerator is the structured-output surface of an LLM provider. It
// returns the model's raw text; decoding happens in ParsePayload.
type JSONGenerator interface {
	GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (string, error)
}

type LLMStepAgentConfig struct {
	MaxConcurrency int64
	Timeout        time.Duration
	// HistoryLimit is how many messages of the current step are replayed.
	HistoryLimit int
}

// LLMStepAgent builds a per-step prompt from earlier notes and the recent
// conversation, then asks the provider for JSON matching the step schema.
type LLMStepAgent struct {
	log      *logger.Logger
	gen      JSONGenerator
	prompts  *PromptSet
	notes    *NoteStore
	messages repos.SelfAnalysisMessageRepo
	sem      *semaphore.Weighted
	cfg      LLMStepAgentConfig
}

func NewLLMStepAgent(
	log *logger.Logger,
	gen JSONGenerator,
	prompts *PromptSet,
	notes *NoteStore,
	messages repos.SelfAnalysisMessageRepo,
	cfg LLMStepAgentConfig,
) (*LLMStepAgent, error) {
	if gen == nil {
		return nil, errors.New("step agent: missing generator")
	}
	if prompts == nil {
		return nil, errors.New("step agent: missing prompts")
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 4
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 12
	}
	return &LLMStepAgent{
		log:      log.With("service", "SelfAnalysisStepAgent"),
		gen:      gen,
		prompts:  prompts,
		notes:    notes,
		messages: messages,
		sem:      semaphore.NewWeighted(cfg.MaxConcurrency),
		cfg:      cfg,
	}, nil
}

func (a *LLMStepAgent) Invoke(ctx context.Context, step Step, sessionID uuid.UUID, input string) (Payload, error) {
	c, err := GetContract(step)
	if err != nil {
		return nil, err
	}
	sp, err := a.prompts.For(step)
	if err != nil {
		return nil, err
	}
	schema, err := Schema(step)
	if err != nil {
		return nil, err
	}

	user, err := a.userPrompt(ctx, c, sessionID, input)
	if err != nil {
		return nil, &AgentCommunicationError{Step: step, Cause: err}
	}
	system := a.systemPrompt(sp, c)

	if err := a.sem.Acquire(ctx, 1); err != nil {
		return nil, &AgentCommunicationError{Step: step, Cause: err}
	}
	defer a.sem.Release(1)

	callCtx := ctx
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := a.gen.GenerateJSON(callCtx, system, user, SchemaName(step), schema)
	if err != nil {
		a.log.Warn("step agent call failed", "step", step, "session_id", sessionID, "error", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, &AgentCommunicationError{Step: step, Cause: err}
	}
	payload, err := ParsePayload(raw)
	if err != nil {
		a.log.Warn("step agent output not decodable", "step", step, "session_id", sessionID, "error", err)
		return nil, &AgentCommunicationError{Step: step, Cause: err}
	}
	if len(payload) == 0 {
		return nil, &AgentCommunicationError{Step: step, Cause: errors.New("empty structured output")}
	}
	a.log.Debug("step agent call ok", "step", step, "session_id", sessionID, "duration_ms", time.Since(start).Milliseconds())
	return payload, nil
}

func (a *LLMStepAgent) systemPrompt(sp StepPrompt, c StepContract) string {
	var b strings.Builder
	b.WriteString(a.prompts.Persona)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "現在のステップ: %s\n", c.Step)
	if sp.Goal != "" {
		fmt.Fprintf(&b, "目的: %s\n", sp.Goal)
	}
	b.WriteString("\n")
	b.WriteString(sp.Instructions)
	b.WriteString("\n\n必須フィールド: ")
	b.WriteString(strings.Join(c.RequiredFields(), ", "))
	fmt.Fprintf(&b, "\nnext_step: 十分に聞き取れたら %q、まだなら %q。", c.NextStep, StepStay)
	return b.String()
}

func (a *LLMStepAgent) userPrompt(ctx context.Context, c StepContract, sessionID uuid.UUID, input string) (string, error) {
	dbc := dbctx.Context{Ctx: ctx}
	var b strings.Builder

	if a.notes != nil && len(c.ContextSteps) > 0 {
		notes, err := a.notes.List(dbc, sessionID, c.ContextSteps...)
		if err != nil {
			return "", fmt.Errorf("load context notes: %w", err)
		}
		if len(notes) > 0 {
			b.WriteString("これまでのステップの記録:\n")
			for _, n := range notes {
				raw, _ := json.Marshal(n.Payload)
				fmt.Fprintf(&b, "[%s] %s\n", n.Step, raw)
			}
			b.WriteString("\n")
		}
	}

	if a.messages != nil {
		msgs, err := a.messages.ListRecent(dbc, sessionID, string(c.Step), a.cfg.HistoryLimit)
		if err != nil {
			return "", fmt.Errorf("load conversation: %w", err)
		}
		if len(msgs) > 0 {
			b.WriteString("このステップでの会話:\n")
			for _, m := range msgs {
				speaker := "学生"
				if m.Role == types.RoleAssistant {
					speaker = "コーチ"
				}
				fmt.Fprintf(&b, "%s: %s\n", speaker, m.Content)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("学生の最新の発言:\n")
	b.WriteString(strings.TrimSpace(input))
	return b.String(), nil
}
