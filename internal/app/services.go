package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/clients/redis"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/modules/selfanalysis"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/observability"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/logger"
)

type Services struct {
	Orchestrator *selfanalysis.Orchestrator
	Agent        selfanalysis.StepAgent
	Sessions     *selfanalysis.SessionState
	Notes        *selfanalysis.NoteStore
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	if err := selfanalysis.ValidateChain(); err != nil {
		return Services{}, fmt.Errorf("self-analysis contracts: %w", err)
	}
	prompts, err := selfanalysis.LoadPrompts()
	if err != nil {
		return Services{}, fmt.Errorf("self-analysis prompts: %w", err)
	}

	sessions := selfanalysis.NewSessionState(reposet.SelfAnalysisSession)
	notes := selfanalysis.NewNoteStore(reposet.SelfAnalysisNote)

	agent, err := selfanalysis.NewLLMStepAgent(log, clients.LLM, prompts, notes, reposet.SelfAnalysisMessage, selfanalysis.LLMStepAgentConfig{
		MaxConcurrency: cfg.LLMMaxConcurrency,
		Timeout:        cfg.AgentTimeout,
		HistoryLimit:   cfg.HistoryLimit,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init step agent: %w", err)
	}

	deps := selfanalysis.OrchestratorDeps{
		DB:       db,
		Log:      log,
		Agent:    agent,
		Sessions: sessions,
		Notes:    notes,
		Messages: reposet.SelfAnalysisMessage,
	}
	if clients.Locker != nil {
		deps.Locker = clients.Locker
	}
	if clients.Bus != nil {
		deps.Notifier = busNotifier{bus: clients.Bus}
	}
	if metrics != nil {
		deps.Metrics = metrics
	}
	orch, err := selfanalysis.NewOrchestrator(deps)
	if err != nil {
		return Services{}, err
	}

	return Services{
		Orchestrator: orch,
		Agent:        agent,
		Sessions:     sessions,
		Notes:        notes,
	}, nil
}

// busNotifier publishes turn events on the Redis event bus.
type busNotifier struct {
	bus *redis.Bus
}

func (n busNotifier) Publish(ctx context.Context, ev selfanalysis.TurnEvent) error {
	return n.bus.Publish(ctx, ev)
}
