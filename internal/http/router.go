package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/itsuki0625/react-ai-chatapp-sub000/internal/http/handlers"
	httpMW "github.com/itsuki0625/react-ai-chatapp-sub000/internal/http/middleware"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/observability"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics

	SelfAnalysisHandler *httpH.SelfAnalysisHandler
	HealthHandler       *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	// Metrics
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Self-analysis
		if cfg.SelfAnalysisHandler != nil {
			sa := api.Group("/self-analysis")
			sa.POST("/sessions", cfg.SelfAnalysisHandler.StartSession)
			sa.POST("/sessions/:id/messages", cfg.SelfAnalysisHandler.SendMessage)
			sa.GET("/sessions/:id", cfg.SelfAnalysisHandler.GetSession)
			sa.GET("/sessions/:id/report", cfg.SelfAnalysisHandler.GetReport)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "route not found", "code": "not_found"}})
	})

	return r
}
