package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/http/response"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/modules/selfanalysis"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/dbctx"
	pkgerrors "github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/errors"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/platform/apierr"
)

const maxMessageRunes = 4000

// SelfAnalysisService is the part of the orchestrator the handler needs.
type SelfAnalysisService interface {
	Start(ctx context.Context) (uuid.UUID, string, error)
	Run(ctx context.Context, sessionID uuid.UUID, userInput string) (string, error)
	Session(dbc dbctx.Context, sessionID uuid.UUID) (selfanalysis.Step, bool, error)
	Report(dbc dbctx.Context, sessionID uuid.UUID) (selfanalysis.Report, bool, error)
}

type SelfAnalysisHandler struct {
	svc SelfAnalysisService
}

func NewSelfAnalysisHandler(svc SelfAnalysisService) *SelfAnalysisHandler {
	return &SelfAnalysisHandler{svc: svc}
}

type sessionResp struct {
	SessionID   uuid.UUID         `json:"session_id"`
	CurrentStep selfanalysis.Step `json:"current_step"`
	Completed   bool              `json:"completed"`
	Message     string            `json:"message,omitempty"`
}

type sendMessageReq struct {
	Message string `json:"message"`
}

// POST /api/self-analysis/sessions
func (h *SelfAnalysisHandler) StartSession(c *gin.Context) {
	id, msg, err := h.svc.Start(c.Request.Context())
	if err != nil {
		response.RespondErr(c, "start_session_failed", err)
		return
	}
	c.JSON(http.StatusCreated, sessionResp{
		SessionID:   id,
		CurrentStep: selfanalysis.FirstStep(),
		Message:     msg,
	})
}

// POST /api/self-analysis/sessions/:id/messages
func (h *SelfAnalysisHandler) SendMessage(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		response.RespondError(c, http.StatusBadRequest, "empty_message", errors.New("message is required"))
		return
	}
	if utf8.RuneCountInString(req.Message) > maxMessageRunes {
		response.RespondError(c, http.StatusBadRequest, "message_too_long", fmt.Errorf("message exceeds %d characters", maxMessageRunes))
		return
	}

	msg, err := h.svc.Run(c.Request.Context(), id, req.Message)
	if err != nil {
		var unknown *selfanalysis.UnknownStepError
		if errors.As(err, &unknown) {
			err = apierr.New(http.StatusInternalServerError, "unknown_step", err)
		}
		response.RespondErr(c, "run_failed", err)
		return
	}

	// The reply is already decided; a failed read only drops the step hint.
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	step, _, _ := h.svc.Session(dbc, id)
	response.RespondOK(c, sessionResp{
		SessionID:   id,
		CurrentStep: step,
		Completed:   step == selfanalysis.StepFin,
		Message:     msg,
	})
}

// GET /api/self-analysis/sessions/:id
func (h *SelfAnalysisHandler) GetSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	step, found, err := h.svc.Session(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondErr(c, "get_session_failed", err)
		return
	}
	if !found {
		response.RespondErr(c, "session_not_found", fmt.Errorf("session %s: %w", id, pkgerrors.ErrNotFound))
		return
	}
	response.RespondOK(c, sessionResp{SessionID: id, CurrentStep: step, Completed: step == selfanalysis.StepFin})
}

// GET /api/self-analysis/sessions/:id/report?format=markdown
func (h *SelfAnalysisHandler) GetReport(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	report, found, err := h.svc.Report(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondErr(c, "get_report_failed", err)
		return
	}
	if !found {
		response.RespondErr(c, "session_not_found", fmt.Errorf("session %s: %w", id, pkgerrors.ErrNotFound))
		return
	}
	if strings.EqualFold(c.Query("format"), "markdown") {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown()))
		return
	}
	response.RespondOK(c, gin.H{"report": report})
}

func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return uuid.Nil, false
	}
	return id, true
}
