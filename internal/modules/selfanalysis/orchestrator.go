package selfanalysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/data/repos"
	types "github.com/itsuki0625/react-ai-chatapp-sub000/internal/domain"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/ctxutil"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/dbctx"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/logger"
)

// Turn outcomes reported to metrics.
const (
	OutcomeAdvanced        = "advanced"
	OutcomeStayed          = "stayed"
	OutcomeAcceptedInvalid = "accepted_invalid"
	OutcomeAgentFailed     = "agent_failed"
	OutcomeStoreFailed     = "store_failed"
	OutcomeCompleted       = "completed"
	OutcomeCanceled        = "canceled"

	// The corrective call errored and the invalid first output was committed.
	OutcomeCorrectionFailed = "correction_failed"
)

// Event types published after a committed turn.
const (
	EventStepAdvanced     = "step_advanced"
	EventStepStayed       = "step_stayed"
	EventSessionCompleted = "session_completed"
)

// TurnEvent describes a committed turn.
type TurnEvent struct {
	Type      string    `json:"type"`
	SessionID uuid.UUID `json:"session_id"`
	From      Step      `json:"from"`
	To        Step      `json:"to"`
	At        time.Time `json:"at"`
}

// Notifier publishes turn events. Failures never affect the turn.
type Notifier interface {
	Publish(ctx context.Context, ev TurnEvent) error
}

// Recorder receives turn metrics.
type Recorder interface {
	ObserveTurn(step string, outcome string, d time.Duration)
	GuardrailViolation(step string, field string)
	AgentFailure(step string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveTurn(string, string, time.Duration) {}
func (nopRecorder) GuardrailViolation(string, string)         {}
func (nopRecorder) AgentFailure(string)                       {}

type OrchestratorDeps struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Agent    StepAgent
	Sessions *SessionState
	Notes    *NoteStore
	Messages repos.SelfAnalysisMessageRepo
	Locker   Locker
	Notifier Notifier
	Metrics  Recorder
}

// Orchestrator runs one conversational turn of the self-analysis pipeline.
type Orchestrator struct {
	db       *gorm.DB
	log      *logger.Logger
	agent    StepAgent
	sessions *SessionState
	notes    *NoteStore
	messages repos.SelfAnalysisMessageRepo
	locker   Locker
	notifier Notifier
	metrics  Recorder
	tracer   trace.Tracer
}

func NewOrchestrator(deps OrchestratorDeps) (*Orchestrator, error) {
	if deps.DB == nil || deps.Log == nil || deps.Agent == nil || deps.Sessions == nil || deps.Notes == nil || deps.Messages == nil {
		return nil, errors.New("self-analysis orchestrator: missing deps")
	}
	if deps.Locker == nil {
		deps.Locker = NewKeyedMutex()
	}
	if deps.Metrics == nil {
		deps.Metrics = nopRecorder{}
	}
	return &Orchestrator{
		db:       deps.DB,
		log:      deps.Log.With("service", "SelfAnalysisOrchestrator"),
		agent:    deps.Agent,
		sessions: deps.Sessions,
		notes:    deps.Notes,
		messages: deps.Messages,
		locker:   deps.Locker,
		notifier: deps.Notifier,
		metrics:  deps.Metrics,
		tracer:   otel.Tracer("selfanalysis"),
	}, nil
}

// Start creates a new session at the first step and returns its opening question.
func (o *Orchestrator) Start(ctx context.Context) (uuid.UUID, string, error) {
	id := uuid.New()
	if _, err := o.sessions.CurrentStep(dbctx.Context{Ctx: ctx}, id); err != nil {
		return uuid.Nil, "", err
	}
	o.log.Info("self-analysis session started", append(ctxutil.LogFields(ctx), "session_id", id)...)
	return id, OpeningPrompt(), nil
}

// Run handles one user message and returns the next question. Only
// *UnknownStepError is returned as an error; every other failure yields a
// fallback question and leaves the session unchanged.
func (o *Orchestrator) Run(ctx context.Context, sessionID uuid.UUID, userInput string) (string, error) {
	ctx, span := o.tracer.Start(ctx, "selfanalysis.run", trace.WithAttributes(attribute.String("session_id", sessionID.String())))
	defer span.End()

	start := time.Now()
	log := o.log.With(append(ctxutil.LogFields(ctx), "session_id", sessionID)...)

	unlock, err := o.locker.Lock(ctx, sessionID.String())
	if err != nil {
		log.Warn("session lock failed", "error", err)
		span.RecordError(err)
		return AgentFailureMessage, nil
	}
	defer unlock()

	step, err := o.sessions.CurrentStep(dbctx.Context{Ctx: ctx}, sessionID)
	if err != nil {
		var unknown *UnknownStepError
		if errors.As(err, &unknown) {
			span.SetStatus(codes.Error, err.Error())
			return "", err
		}
		log.Error("load session failed", "error", err)
		return AgentFailureMessage, nil
	}
	span.SetAttributes(attribute.String("step", string(step)))
	if step == StepFin {
		o.metrics.ObserveTurn(string(step), OutcomeCompleted, time.Since(start))
		return CompletionMessage, nil
	}

	c, err := GetContract(step)
	if err != nil {
		return "", err
	}

	payload, err := o.invoke(ctx, step, sessionID, userInput)
	if err != nil {
		var unknown *UnknownStepError
		if errors.As(err, &unknown) {
			span.SetStatus(codes.Error, err.Error())
			return "", err
		}
		log.Warn("step agent unavailable", "step", step, "error", err)
		o.metrics.AgentFailure(string(step))
		o.metrics.ObserveTurn(string(step), OutcomeAgentFailed, time.Since(start))
		return AgentFailureMessage, nil
	}

	outcome := ""
	if verr := Validate(step, payload); verr != nil {
		o.recordViolation(step, verr)
		log.Info("guardrail violation, retrying", "step", step, "reason", verr.Error())

		corrected, err := o.agent.Invoke(ctx, step, sessionID, correctiveInput(userInput, verr))
		switch {
		case err != nil:
			log.Warn("corrective call failed, accepting first output", "step", step, "error", err)
			o.metrics.AgentFailure(string(step))
			outcome = OutcomeCorrectionFailed
		default:
			payload = corrected
			if verr2 := Validate(step, payload); verr2 != nil {
				o.recordViolation(step, verr2)
				log.Warn("guardrail still violated, accepting output", "step", step, "reason", verr2.Error())
				outcome = OutcomeAcceptedInvalid
			}
		}
	}

	out := newStepOutput(c, sessionID, payload)
	target := step
	if out.NextStep != StepStay {
		target = out.NextStep
	}
	msg := ensureQuestion(target, out.UserMessage)

	if err := ctx.Err(); err != nil {
		o.metrics.ObserveTurn(string(step), OutcomeCanceled, time.Since(start))
		return AgentFailureMessage, nil
	}

	err = o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := o.notes.Save(dbc, sessionID, step, out.Payload); err != nil {
			return fmt.Errorf("save note: %w", err)
		}
		if _, err := o.messages.Append(dbc, sessionID, []*types.SelfAnalysisMessage{
			{Step: string(step), Role: types.RoleUser, Content: userInput},
			{Step: string(step), Role: types.RoleAssistant, Content: msg},
		}); err != nil {
			return fmt.Errorf("append messages: %w", err)
		}
		if err := o.sessions.Advance(dbc, sessionID, step, out.NextStep); err != nil {
			return err
		}
		return ctx.Err()
	})
	if err != nil {
		var unknown *UnknownStepError
		if errors.As(err, &unknown) {
			span.SetStatus(codes.Error, err.Error())
			return "", err
		}
		log.Error("persist turn failed", "step", step, "error", err)
		span.RecordError(err)
		o.metrics.ObserveTurn(string(step), OutcomeStoreFailed, time.Since(start))
		return AgentFailureMessage, nil
	}

	if outcome == "" {
		outcome = OutcomeStayed
		if out.NextStep != StepStay {
			outcome = OutcomeAdvanced
		}
	}
	o.metrics.ObserveTurn(string(step), outcome, time.Since(start))
	log.Info("self-analysis turn committed", "step", step, "next_step", out.NextStep, "outcome", outcome, "duration_ms", time.Since(start).Milliseconds())

	o.notify(ctx, log, sessionID, step, out.NextStep)
	return msg, nil
}

// invoke calls the agent and retries once on a communication failure.
func (o *Orchestrator) invoke(ctx context.Context, step Step, sessionID uuid.UUID, input string) (Payload, error) {
	payload, err := o.agent.Invoke(ctx, step, sessionID, input)
	if err == nil {
		return payload, nil
	}
	var comm *AgentCommunicationError
	if !errors.As(err, &comm) || ctx.Err() != nil {
		return nil, err
	}
	o.metrics.AgentFailure(string(step))
	payload, err = o.agent.Invoke(ctx, step, sessionID, input)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (o *Orchestrator) recordViolation(step Step, err error) {
	var v *GuardrailViolation
	if errors.As(err, &v) {
		o.metrics.GuardrailViolation(string(step), v.Field)
		return
	}
	o.metrics.GuardrailViolation(string(step), "")
}

func (o *Orchestrator) notify(ctx context.Context, log *logger.Logger, sessionID uuid.UUID, from, next Step) {
	if o.notifier == nil {
		return
	}
	ev := TurnEvent{Type: EventStepStayed, SessionID: sessionID, From: from, To: from, At: time.Now().UTC()}
	switch {
	case next == StepFin:
		ev.Type, ev.To = EventSessionCompleted, next
	case next != StepStay:
		ev.Type, ev.To = EventStepAdvanced, next
	}
	if err := o.notifier.Publish(context.WithoutCancel(ctx), ev); err != nil {
		log.Warn("publish turn event failed", "event", ev.Type, "error", err)
	}
}

// correctiveInput appends the violation reason to the original user message.
func correctiveInput(input string, verr error) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(input))
	b.WriteString("\n\n[correction] 直前の出力は次の条件を満たしていませんでした: ")
	b.WriteString(verr.Error())
	b.WriteString("\nすべての条件を満たす JSON を出力し直してください。")
	return b.String()
}

// Session reports the current step of sessionID without creating it.
func (o *Orchestrator) Session(dbc dbctx.Context, sessionID uuid.UUID) (Step, bool, error) {
	return o.sessions.Peek(dbc, sessionID)
}

// Report assembles the notes of sessionID.
func (o *Orchestrator) Report(dbc dbctx.Context, sessionID uuid.UUID) (Report, bool, error) {
	return BuildReport(dbc, o.sessions, o.notes, sessionID)
}
