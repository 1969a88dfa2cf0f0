package domain

import (
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/domain/selfanalysis"
)

const (
	RoleUser      = selfanalysis.RoleUser
	RoleAssistant = selfanalysis.RoleAssistant
)

type (
	SelfAnalysisSession = selfanalysis.SelfAnalysisSession
	SelfAnalysisNote    = selfanalysis.SelfAnalysisNote
	SelfAnalysisMessage = selfanalysis.SelfAnalysisMessage
)

// AllModels lists every table owned by this service, in migration order.
func AllModels() []any {
	return []any{
		&SelfAnalysisSession{},
		&SelfAnalysisNote{},
		&SelfAnalysisMessage{},
	}
}
