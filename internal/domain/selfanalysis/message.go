package selfanalysis

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// SelfAnalysisMessage is one line of the conversation, tagged with the step it belongs to.
type SelfAnalysisMessage struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	SessionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_self_analysis_message_session_seq,priority:1" json:"session_id"`
	Seq       int64     `gorm:"column:seq;not null;uniqueIndex:idx_self_analysis_message_session_seq,priority:2" json:"seq"`

	Step    string `gorm:"column:step;type:text;not null;index" json:"step"`
	Role    string `gorm:"column:role;type:text;not null" json:"role"`
	Content string `gorm:"column:content;type:text;not null" json:"content"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (SelfAnalysisMessage) TableName() string { return "self_analysis_message" }
