package app

import (
	"gorm.io/gorm"

	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/data/repos"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/logger"
)

type Repos struct {
	SelfAnalysisSession repos.SelfAnalysisSessionRepo
	SelfAnalysisNote    repos.SelfAnalysisNoteRepo
	SelfAnalysisMessage repos.SelfAnalysisMessageRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		SelfAnalysisSession: repos.NewSelfAnalysisSessionRepo(db, log),
		SelfAnalysisNote:    repos.NewSelfAnalysisNoteRepo(db, log),
		SelfAnalysisMessage: repos.NewSelfAnalysisMessageRepo(db, log),
	}
}
