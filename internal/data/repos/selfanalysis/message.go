package selfanalysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/itsuki0625/react-ai-chatapp-sub000/internal/domain"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/dbctx"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/logger"
)

type MessageRepo interface {
	// Append stores messages in order after the session's current last seq.
	// Callers serialize writers per session.
	Append(dbc dbctx.Context, sessionID uuid.UUID, msgs []*types.SelfAnalysisMessage) ([]*types.SelfAnalysisMessage, error)
	// ListRecent returns up to limit newest messages for the step, oldest first.
	ListRecent(dbc dbctx.Context, sessionID uuid.UUID, step string, limit int) ([]*types.SelfAnalysisMessage, error)
}

type messageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
	return &messageRepo{
		db:  db,
		log: baseLog.With("repo", "SelfAnalysisMessageRepo"),
	}
}

func (r *messageRepo) Append(dbc dbctx.Context, sessionID uuid.UUID, msgs []*types.SelfAnalysisMessage) ([]*types.SelfAnalysisMessage, error) {
	if sessionID == uuid.Nil {
		return nil, fmt.Errorf("missing session_id")
	}
	rows := make([]*types.SelfAnalysisMessage, 0, len(msgs))
	for _, m := range msgs {
		if m == nil || strings.TrimSpace(m.Content) == "" {
			continue
		}
		rows = append(rows, m)
	}
	if len(rows) == 0 {
		return rows, nil
	}

	t := dbc.DB(r.db)
	var maxSeq int64
	if err := t.Model(&types.SelfAnalysisMessage{}).
		Where("session_id = ?", sessionID).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&maxSeq).Error; err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for i, m := range rows {
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		m.SessionID = sessionID
		m.Seq = maxSeq + int64(i) + 1
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
	}
	if err := t.Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *messageRepo) ListRecent(dbc dbctx.Context, sessionID uuid.UUID, step string, limit int) ([]*types.SelfAnalysisMessage, error) {
	out := []*types.SelfAnalysisMessage{}
	if sessionID == uuid.Nil {
		return out, nil
	}
	if limit <= 0 {
		limit = 20
	}
	q := dbc.DB(r.db).Where("session_id = ?", sessionID)
	if step != "" {
		q = q.Where("step = ?", step)
	}
	if err := q.Order("seq DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
