package selfanalysis

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/itsuki0625/react-ai-chatapp-sub000/internal/domain"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/dbctx"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/logger"
)

type NoteRepo interface {
	// Upsert writes the payload for (session, step), replacing any earlier one.
	Upsert(dbc dbctx.Context, sessionID uuid.UUID, step string, payload datatypes.JSON) error
	// List returns notes ordered by created_at. An empty steps filter returns all steps.
	List(dbc dbctx.Context, sessionID uuid.UUID, steps []string) ([]*types.SelfAnalysisNote, error)
}

type noteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNoteRepo(db *gorm.DB, baseLog *logger.Logger) NoteRepo {
	return &noteRepo{
		db:  db,
		log: baseLog.With("repo", "SelfAnalysisNoteRepo"),
	}
}

func (r *noteRepo) Upsert(dbc dbctx.Context, sessionID uuid.UUID, step string, payload datatypes.JSON) error {
	if sessionID == uuid.Nil {
		return fmt.Errorf("missing session_id")
	}
	if step == "" {
		return fmt.Errorf("missing step")
	}
	if len(payload) == 0 {
		payload = datatypes.JSON([]byte("{}"))
	}
	now := time.Now().UTC()
	row := &types.SelfAnalysisNote{
		ID:        uuid.New(),
		SessionID: sessionID,
		Step:      step,
		Payload:   payload,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "step"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(row).Error
}

func (r *noteRepo) List(dbc dbctx.Context, sessionID uuid.UUID, steps []string) ([]*types.SelfAnalysisNote, error) {
	out := []*types.SelfAnalysisNote{}
	if sessionID == uuid.Nil {
		return out, nil
	}
	q := dbc.DB(r.db).Where("session_id = ?", sessionID)
	if len(steps) > 0 {
		q = q.Where("step IN ?", steps)
	}
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
