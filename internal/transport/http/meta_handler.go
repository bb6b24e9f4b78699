package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"datastudio/internal/config"
	api "datastudio/pkg/contracts/api/v1"
)

// MetaHandler serves the static API metadata the frontend needs before
// the first upload: supported formats, size limits and export defaults.
type MetaHandler struct {
	analysis config.AnalysisConfig
	export   config.ExportConfig
}

// NewMetaHandler creates a new meta handler
func NewMetaHandler(analysis config.AnalysisConfig, export config.ExportConfig) *MetaHandler {
	return &MetaHandler{analysis: analysis, export: export}
}

// Routes sets up the meta routes
func (h *MetaHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetMeta)
	return r
}

// GetMeta handles GET /api/meta
func (h *MetaHandler) GetMeta(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, api.MetaResponse{
		SupportedExtensions: config.SupportedExtensions,
		MaxUploadBytes:      h.analysis.MaxUploadBytes,
		PreviewRows:         h.analysis.PreviewRows,
		ExportRegion:        h.export.DefaultRegion,
		ExportPrefix:        h.export.DefaultPrefix,
	})
}
