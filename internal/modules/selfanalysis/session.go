package selfanalysis

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/data/repos"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/dbctx"
	pkgerrors "github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/errors"
)

// SessionState is the single authority for where a session is in the pipeline.
type SessionState struct {
	repo repos.SelfAnalysisSessionRepo
}

func NewSessionState(repo repos.SelfAnalysisSessionRepo) *SessionState {
	return &SessionState{repo: repo}
}

// CurrentStep returns the step of sessionID, creating the session at the
// first step when it has never been seen.
func (s *SessionState) CurrentStep(dbc dbctx.Context, sessionID uuid.UUID) (Step, error) {
	row, err := s.repo.GetOrCreate(dbc, sessionID, string(FirstStep()))
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	return ParseStateStep(row.CurrentStep)
}

// Peek returns the step of sessionID without creating it. ok is false for unknown sessions.
func (s *SessionState) Peek(dbc dbctx.Context, sessionID uuid.UUID) (step Step, ok bool, err error) {
	row, err := s.repo.GetByID(dbc, sessionID)
	if err != nil {
		return "", false, fmt.Errorf("load session: %w", err)
	}
	if row == nil {
		return "", false, nil
	}
	step, err = ParseStateStep(row.CurrentStep)
	if err != nil {
		return "", false, err
	}
	return step, true, nil
}

// Advance moves sessionID from one step to its successor. StepStay is a
// no-op; any other target than the successor of from is rejected, and a
// session that is no longer at from yields ErrConflict.
func (s *SessionState) Advance(dbc dbctx.Context, sessionID uuid.UUID, from, next Step) error {
	if next == StepStay {
		return nil
	}
	if !from.IsPipelineStep() {
		return &UnknownStepError{Step: string(from)}
	}
	if !next.IsState() {
		return &UnknownStepError{Step: string(next)}
	}
	c, err := GetContract(from)
	if err != nil {
		return err
	}
	if next != c.NextStep {
		return fmt.Errorf("%w: %s cannot advance to %s", pkgerrors.ErrInvalidArgument, from, next)
	}
	changed, err := s.repo.CompareAndSetStep(dbc, sessionID, string(from), string(next), next == StepFin)
	if err != nil {
		return fmt.Errorf("advance session: %w", err)
	}
	if !changed {
		return fmt.Errorf("%w: session %s is no longer at %s", pkgerrors.ErrConflict, sessionID, from)
	}
	return nil
}
