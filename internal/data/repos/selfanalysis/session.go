package selfanalysis

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/itsuki0625/react-ai-chatapp-sub000/internal/domain"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/dbctx"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/logger"
)

type SessionRepo interface {
	GetByID(dbc dbctx.Context, sessionID uuid.UUID) (*types.SelfAnalysisSession, error)
	GetOrCreate(dbc dbctx.Context, sessionID uuid.UUID, initialStep string) (*types.SelfAnalysisSession, error)
	// CompareAndSetStep moves current_step from -> to and reports whether a row changed.
	CompareAndSetStep(dbc dbctx.Context, sessionID uuid.UUID, from, to string, completed bool) (bool, error)
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return &sessionRepo{
		db:  db,
		log: baseLog.With("repo", "SelfAnalysisSessionRepo"),
	}
}

func (r *sessionRepo) GetByID(dbc dbctx.Context, sessionID uuid.UUID) (*types.SelfAnalysisSession, error) {
	if sessionID == uuid.Nil {
		return nil, fmt.Errorf("missing session_id")
	}
	var out types.SelfAnalysisSession
	err := dbc.DB(r.db).Where("id = ?", sessionID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *sessionRepo) GetOrCreate(dbc dbctx.Context, sessionID uuid.UUID, initialStep string) (*types.SelfAnalysisSession, error) {
	if initialStep == "" {
		return nil, fmt.Errorf("missing initial step")
	}
	ex, err := r.GetByID(dbc, sessionID)
	if err != nil {
		return nil, err
	}
	if ex != nil {
		return ex, nil
	}

	now := time.Now().UTC()
	row := &types.SelfAnalysisSession{
		ID:          sessionID,
		CurrentStep: initialStep,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		if !isUniqueViolation(err) {
			return nil, err
		}
		// Another request created it first.
		ex2, getErr := r.GetByID(dbc, sessionID)
		if getErr != nil {
			return nil, getErr
		}
		if ex2 == nil {
			return nil, err
		}
		r.log.Debug("session created concurrently", "session_id", sessionID)
		return ex2, nil
	}
	return row, nil
}

func (r *sessionRepo) CompareAndSetStep(dbc dbctx.Context, sessionID uuid.UUID, from, to string, completed bool) (bool, error) {
	if sessionID == uuid.Nil {
		return false, fmt.Errorf("missing session_id")
	}
	now := time.Now().UTC()
	updates := map[string]any{
		"current_step": to,
		"updated_at":   now,
	}
	if completed {
		updates["completed_at"] = now
	}
	res := dbc.DB(r.db).
		Model(&types.SelfAnalysisSession{}).
		Where("id = ? AND current_step = ?", sessionID, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
