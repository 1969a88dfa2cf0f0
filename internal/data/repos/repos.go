package repos

import (
	"gorm.io/gorm"

	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/data/repos/selfanalysis"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/logger"
)

type SelfAnalysisSessionRepo = selfanalysis.SessionRepo
type SelfAnalysisNoteRepo = selfanalysis.NoteRepo
type SelfAnalysisMessageRepo = selfanalysis.MessageRepo

func NewSelfAnalysisSessionRepo(db *gorm.DB, log *logger.Logger) SelfAnalysisSessionRepo {
	return selfanalysis.NewSessionRepo(db, log)
}

func NewSelfAnalysisNoteRepo(db *gorm.DB, log *logger.Logger) SelfAnalysisNoteRepo {
	return selfanalysis.NewNoteRepo(db, log)
}

func NewSelfAnalysisMessageRepo(db *gorm.DB, log *logger.Logger) SelfAnalysisMessageRepo {
	return selfanalysis.NewMessageRepo(db, log)
}
