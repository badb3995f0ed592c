package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-prep/internal/model"
	"github.com/stemsi/exstem-prep/internal/response"
	"github.com/stemsi/exstem-prep/internal/session"
	"github.com/stemsi/exstem-prep/internal/validator"
)

// SessionHandler drives the assessment engine over HTTP. Every mutating
// endpoint replies with the resulting session view.
type SessionHandler struct {
	engine *session.Engine
	log    zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(engine *session.Engine, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		engine: engine,
		log:    log.With().Str("component", "session_handler").Logger(),
	}
}

// GetSession godoc
// GET /api/v1/session
func (h *SessionHandler) GetSession(c *gin.Context) {
	response.Success(c, http.StatusOK, h.engine.Snapshot())
}

// StartSession godoc
// POST /api/v1/session/start
// Starts a module from any state, discarding an unfinished attempt.
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req model.StartSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.engine.Start(c.Request.Context(), req.ModuleID); err != nil {
		if errors.Is(err, session.ErrModuleNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrModuleNotFound)
			return
		}
		h.log.Error().Err(err).Str("module_id", req.ModuleID).Msg("Start failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, h.engine.Snapshot())
}

// ResumeSession godoc
// POST /api/v1/session/resume
// Reloads the attempt kept by Exit. An attempt whose time ran out comes back
// submitted.
func (h *SessionHandler) ResumeSession(c *gin.Context) {
	err := h.engine.Resume(c.Request.Context())
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, h.engine.Snapshot())
	case errors.Is(err, session.ErrSessionInProgress):
		response.Fail(c, http.StatusConflict, response.ErrSessionInProgress)
	case errors.Is(err, session.ErrNoCheckpoint):
		response.Fail(c, http.StatusNotFound, response.ErrNoCheckpoint)
	default:
		h.log.Error().Err(err).Msg("Resume failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// RecordAnswer godoc
// POST /api/v1/session/answers
func (h *SessionHandler) RecordAnswer(c *gin.Context) {
	if !h.requireActive(c) {
		return
	}

	var req model.RecordAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	h.engine.RecordAnswer(c.Request.Context(), req.QuestionID, *req.OptionIndex)
	response.Success(c, http.StatusOK, h.engine.Snapshot())
}

// ToggleFlag godoc
// POST /api/v1/session/flags
func (h *SessionHandler) ToggleFlag(c *gin.Context) {
	if !h.requireActive(c) {
		return
	}

	var req model.ToggleFlagRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	h.engine.ToggleFlag(c.Request.Context(), req.QuestionID)
	response.Success(c, http.StatusOK, h.engine.Snapshot())
}

// Navigate godoc
// POST /api/v1/session/navigate
// Out-of-range indexes are clamped, never rejected.
func (h *SessionHandler) Navigate(c *gin.Context) {
	if !h.requireActive(c) {
		return
	}

	var req model.NavigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	h.engine.Navigate(c.Request.Context(), *req.Index)
	response.Success(c, http.StatusOK, h.engine.Snapshot())
}

// ReportSignal godoc
// POST /api/v1/session/signals
// Classifies an environment signal. verdict.cancel tells the client to
// suppress the default action.
func (h *SessionHandler) ReportSignal(c *gin.Context) {
	var req model.ReportSignalRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	obs, ok := h.engine.ReportSignal(c.Request.Context(), req.Signal, req.Detail)
	if !ok {
		response.Fail(c, http.StatusConflict, response.ErrNoActiveSession)
		return
	}

	response.Success(c, http.StatusOK, obs)
}

// Submit godoc
// POST /api/v1/session/submit
// Finalizes the attempt. Submitting a finalized attempt returns it unchanged.
func (h *SessionHandler) Submit(c *gin.Context) {
	if h.engine.Status() == session.StatusNoSession {
		response.Fail(c, http.StatusConflict, response.ErrNoActiveSession)
		return
	}

	h.engine.Submit(c.Request.Context())
	response.Success(c, http.StatusOK, h.engine.Snapshot())
}

// Reset godoc
// POST /api/v1/session/reset
// Restarts the selected module at full duration.
func (h *SessionHandler) Reset(c *gin.Context) {
	if h.engine.Status() == session.StatusNoSession {
		response.Fail(c, http.StatusConflict, response.ErrNoSelectedModule)
		return
	}

	h.engine.Reset(c.Request.Context())
	response.Success(c, http.StatusOK, h.engine.Snapshot())
}

// Exit godoc
// POST /api/v1/session/exit
// Returns to the catalog. An unfinished attempt stays resumable.
func (h *SessionHandler) Exit(c *gin.Context) {
	h.engine.ExitToCatalog(c.Request.Context())
	response.Success(c, http.StatusOK, h.engine.Snapshot())
}

// GetPerformance godoc
// GET /api/v1/session/performance
func (h *SessionHandler) GetPerformance(c *gin.Context) {
	perf, ok := h.engine.Performance()
	if !ok {
		response.Fail(c, http.StatusConflict, response.ErrNoSelectedModule)
		return
	}
	response.Success(c, http.StatusOK, perf)
}

func (h *SessionHandler) requireActive(c *gin.Context) bool {
	if h.engine.Status() != session.StatusActive {
		response.Fail(c, http.StatusConflict, response.ErrNoActiveSession)
		return false
	}
	return true
}
