package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-prep/internal/model"
	"github.com/stemsi/exstem-prep/internal/repository"
	"github.com/stemsi/exstem-prep/internal/response"
	"github.com/stemsi/exstem-prep/internal/validator"
)

const (
	defaultPerPage      = 20
	defaultArchiveLimit = 50
)

// HistorySource lists finalized attempts, oldest first.
type HistorySource interface {
	History(ctx context.Context) ([]model.HistoryRecord, error)
}

// ArchiveReader lists attempts mirrored to Postgres.
type ArchiveReader interface {
	ListRecent(ctx context.Context, limit int) ([]repository.ArchivedAttempt, error)
}

// HistoryHandler serves the attempt history and the optional archive.
type HistoryHandler struct {
	history HistorySource
	archive ArchiveReader
	log     zerolog.Logger
}

// NewHistoryHandler creates a new HistoryHandler. archive may be nil.
func NewHistoryHandler(history HistorySource, archive ArchiveReader, log zerolog.Logger) *HistoryHandler {
	return &HistoryHandler{
		history: history,
		archive: archive,
		log:     log.With().Str("component", "history_handler").Logger(),
	}
}

// ListHistory godoc
// GET /api/v1/history?page=&per_page=
func (h *HistoryHandler) ListHistory(c *gin.Context) {
	var q model.HistoryQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PerPage == 0 {
		q.PerPage = defaultPerPage
	}

	records, err := h.history.History(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("List history failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	pagination, start, end := response.Paginate(q.Page, q.PerPage, len(records))
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"records": records[start:end]}, pagination)
}

// ListArchive godoc
// GET /api/v1/history/archive?limit=
// Newest first, with violation counts. 503 when no archive is configured.
func (h *HistoryHandler) ListArchive(c *gin.Context) {
	if h.archive == nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrArchiveDisabled)
		return
	}

	var q model.ArchiveQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	if q.Limit == 0 {
		q.Limit = defaultArchiveLimit
	}

	attempts, err := h.archive.ListRecent(c.Request.Context(), q.Limit)
	if err != nil {
		h.log.Error().Err(err).Msg("List archive failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}
