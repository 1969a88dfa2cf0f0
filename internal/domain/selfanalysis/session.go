package selfanalysis

import (
	"time"

	"github.com/google/uuid"
)

// SelfAnalysisSession is one student's run through the self-analysis pipeline.
// CurrentStep is always a pipeline step name or the terminal marker.
type SelfAnalysisSession struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	CurrentStep string `gorm:"column:current_step;type:text;not null;index" json:"current_step"`

	CompletedAt *time.Time `gorm:"column:completed_at;index" json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (SelfAnalysisSession) TableName() string { return "self_analysis_session" }
