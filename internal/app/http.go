package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/http"
	httpH "github.com/itsuki0625/react-ai-chatapp-sub000/internal/http/handlers"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/observability"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/logger"
)

type Handlers struct {
	Health       *httpH.HealthHandler
	SelfAnalysis *httpH.SelfAnalysisHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) (Handlers, error) {
	log.Info("Wiring handlers...")
	sqlDB, err := db.DB()
	if err != nil {
		return Handlers{}, err
	}
	return Handlers{
		Health:       httpH.NewHealthHandler(sqlDB),
		SelfAnalysis: httpH.NewSelfAnalysisHandler(services.Orchestrator),
	}, nil
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:                 log,
		ServiceName:         cfg.Otel.ServiceName,
		CORSOrigins:         cfg.CORSOrigins,
		Metrics:             metrics,
		HealthHandler:       handlers.Health,
		SelfAnalysisHandler: handlers.SelfAnalysis,
	})
}
