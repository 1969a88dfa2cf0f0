package selfanalysis

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/data/repos"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/dbctx"
)

// Note is the persisted structured output of one step.
type Note struct {
	SessionID uuid.UUID
	Step      Step
	Payload   Payload
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NoteStore keeps one note per (session, step).
type NoteStore struct {
	repo repos.SelfAnalysisNoteRepo
}

func NewNoteStore(repo repos.SelfAnalysisNoteRepo) *NoteStore {
	return &NoteStore{repo: repo}
}

// Save upserts the note of step; a second save overwrites the first.
func (s *NoteStore) Save(dbc dbctx.Context, sessionID uuid.UUID, step Step, payload Payload) error {
	if !step.IsPipelineStep() {
		return &UnknownStepError{Step: string(step)}
	}
	if payload == nil {
		payload = Payload{}
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s note: %w", step, err)
	}
	return s.repo.Upsert(dbc, sessionID, string(step), datatypes.JSON(b))
}

// List returns the notes of a session ordered by creation time, then pipeline
// order. With no steps every note is returned.
func (s *NoteStore) List(dbc dbctx.Context, sessionID uuid.UUID, steps ...Step) ([]Note, error) {
	filter := make([]string, 0, len(steps))
	for _, st := range steps {
		filter = append(filter, string(st))
	}
	rows, err := s.repo.List(dbc, sessionID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]Note, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		var p Payload
		if len(row.Payload) > 0 {
			if err := json.Unmarshal(row.Payload, &p); err != nil {
				return nil, fmt.Errorf("decode %s note: %w", row.Step, err)
			}
		}
		out = append(out, Note{
			SessionID: row.SessionID,
			Step:      Step(row.Step),
			Payload:   p,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Step.Index() < out[j].Step.Index()
	})
	return out, nil
}
