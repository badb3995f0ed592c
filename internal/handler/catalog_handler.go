package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/exstem-prep/internal/catalog"
	"github.com/stemsi/exstem-prep/internal/model"
	"github.com/stemsi/exstem-prep/internal/response"
)

// ModuleCatalog is the read side of the synthesized catalog.
type ModuleCatalog interface {
	Get(id string) (*model.Module, error)
	Summaries() []model.ModuleSummary
}

// CatalogHandler serves the module catalog.
type CatalogHandler struct {
	catalog ModuleCatalog
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(c ModuleCatalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

// ListModules godoc
// GET /api/v1/modules
// Lists every module. ?tier=EASY|MEDIUM|HARD narrows the listing.
func (h *CatalogHandler) ListModules(c *gin.Context) {
	tier := model.Difficulty(c.Query("tier"))

	modules := make([]model.ModuleSummary, 0)
	for _, m := range h.catalog.Summaries() {
		if tier != "" && m.Tier != tier {
			continue
		}
		modules = append(modules, m)
	}

	response.Success(c, http.StatusOK, gin.H{"modules": modules})
}

// GetModule godoc
// GET /api/v1/modules/:module_id
// Returns the candidate-facing paper; correct answers are never included.
func (h *CatalogHandler) GetModule(c *gin.Context) {
	m, err := h.catalog.Get(c.Param("module_id"))
	if err != nil {
		if errors.Is(err, catalog.ErrModuleNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrModuleNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, m.Paper())
}
