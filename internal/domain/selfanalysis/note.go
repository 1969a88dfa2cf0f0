package selfanalysis

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SelfAnalysisNote is the structured output of one step for one session.
// (session_id, step) is unique: a re-run of a step overwrites the payload in place.
type SelfAnalysisNote struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	SessionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_self_analysis_note_session_step,priority:1" json:"session_id"`
	Step      string    `gorm:"column:step;type:text;not null;uniqueIndex:idx_self_analysis_note_session_step,priority:2" json:"step"`

	Payload datatypes.JSON `gorm:"column:payload;not null" json:"payload"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (SelfAnalysisNote) TableName() string { return "self_analysis_note" }
