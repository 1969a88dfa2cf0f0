package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/http/response"
	pkgerrors "github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/errors"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler { return &HealthHandler{db: db} }

// GET /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// GET /readyz
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			response.RespondErr(c, "db_unavailable", fmt.Errorf("database ping: %w: %v", pkgerrors.ErrUnavailable, err))
			return
		}
	}
	c.String(http.StatusOK, "ready")
}
