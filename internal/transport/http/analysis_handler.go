package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apierrors "datastudio/internal/errors"
	"datastudio/internal/services"
	api "datastudio/pkg/contracts/api/v1"
	"datastudio/pkg/contracts/domain"
)

// analysisIDKey is the chi URL parameter carrying the analysis id.
const analysisIDKey = "analysisID"

// AnalysisHandler handles analysis HTTP requests with RFC 7807 compliance
type AnalysisHandler struct {
	service        AnalysisServiceInterface
	validate       *validator.Validate
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
}

// NewAnalysisHandler creates a new analysis handler with RFC 7807 error handling
func NewAnalysisHandler(service AnalysisServiceInterface, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalysisHandler {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &AnalysisHandler{
		service:        service,
		validate:       v,
		logger:         logger.With(slog.String("component", "analysis_handler")),
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the analysis routes with proper Chi patterns
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateAnalysis)

	r.Route("/{analysisID}", func(r chi.Router) {
		r.Use(h.AnalysisCtx) // Validate the id before any lookup
		r.Get("/", h.GetAnalysis)
		r.Get("/download/cleaned", h.DownloadCleaned)
		r.Get("/download/report", h.DownloadReport)
		r.Get("/charts", h.GetCharts)
		r.Post("/export", h.ExportAnalysis)
	})

	return r
}

// AnalysisCtx middleware validates the analysis id parameter
func (h *AnalysisHandler) AnalysisCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, analysisIDKey)
		if id == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(analysisIDKey, "Analysis id is required"))
			return
		}

		if _, err := uuid.Parse(id); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(analysisIDKey, "Analysis id must be a valid UUID"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// CreateAnalysis handles POST /api/analysis: a multipart upload carrying
// the dataset in the "file" field
func (h *AnalysisHandler) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusRequestEntityTooLarge,
				"PAYLOAD_TOO_LARGE",
				"Uploaded file exceeds the size limit",
				map[string]interface{}{"limit": h.maxUploadBytes},
			))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "A dataset file is required"))
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to read upload",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "analysis upload received",
		slog.String("request_id", reqID),
		slog.String("filename", header.Filename),
		slog.Int("size", len(raw)),
	)

	analysis, err := h.service.Analyze(r.Context(), header.Filename, raw)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "analysis failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("filename", header.Filename),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.analysisView(analysis),
	})
}

// GetAnalysis handles GET /api/analysis/{analysisID}
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, analysisIDKey)

	analysis, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleAnalysisError(w, r, id, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.analysisView(analysis),
	})
}

// DownloadCleaned handles GET /api/analysis/{analysisID}/download/cleaned
func (h *AnalysisHandler) DownloadCleaned(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, analysisIDKey)

	doc, err := h.service.CleanedCSV(r.Context(), id)
	if err != nil {
		h.handleAnalysisError(w, r, id, err)
		return
	}

	h.serveDocument(w, r, doc)
}

// DownloadReport handles GET /api/analysis/{analysisID}/download/report
func (h *AnalysisHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, analysisIDKey)

	doc, err := h.service.ReportDocument(r.Context(), id)
	if err != nil {
		h.handleAnalysisError(w, r, id, err)
		return
	}

	h.serveDocument(w, r, doc)
}

// GetCharts handles GET /api/analysis/{analysisID}/charts, serving the
// EDA dashboard as a standalone HTML page
func (h *AnalysisHandler) GetCharts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, analysisIDKey)
	reqID := middleware.GetReqID(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.service.RenderCharts(r.Context(), id, w); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render charts",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("analysis_id", id),
		)
		// Headers may already be out once rendering started.
		if !isResponseWritten(w) {
			w.Header().Del("Content-Type")
			h.handleAnalysisError(w, r, id, err)
		}
	}
}

// ExportAnalysis handles POST /api/analysis/{analysisID}/export
func (h *AnalysisHandler) ExportAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, analysisIDKey)
	reqID := middleware.GetReqID(r.Context())

	var req api.ExportRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	if err := h.validateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "export requested",
		slog.String("request_id", reqID),
		slog.String("analysis_id", id),
		slog.String("bucket", req.Bucket),
		slog.String("region", req.Region),
	)

	result, err := h.service.Export(r.Context(), id, services.ExportParams{
		Bucket:          req.Bucket,
		Prefix:          req.Prefix,
		Region:          req.Region,
		AccessKeyID:     req.AccessKeyID,
		SecretAccessKey: req.SecretAccessKey,
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "export failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("analysis_id", id),
		)
		h.handleAnalysisError(w, r, id, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": api.ExportResponse{
			DataURI:   result.DataURI,
			ReportURI: result.ReportURI,
		},
	})
}

// handleAnalysisError maps service sentinel errors to API errors and
// delegates everything else to the central error handler
func (h *AnalysisHandler) handleAnalysisError(w http.ResponseWriter, r *http.Request, id string, err error) {
	if errors.Is(err, services.ErrAnalysisNotFound) {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusNotFound,
			"ANALYSIS_NOT_FOUND",
			fmt.Sprintf("Analysis '%s' not found or expired", id),
			map[string]interface{}{"analysis_id": id},
		))
		return
	}

	h.errorHandler.HandleError(w, r, err)
}

// serveDocument writes a download with attachment disposition
func (h *AnalysisHandler) serveDocument(w http.ResponseWriter, r *http.Request, doc services.Document) {
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Name))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(doc.Body)))
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Body)
}

// validateStruct validates a request DTO against its struct tags
func (h *AnalysisHandler) validateStruct(v interface{}) error {
	err := h.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.InvalidRequestWithError(err)
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		message := fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
		if fe.Tag() == "required" {
			message = fmt.Sprintf("%s is required", fe.Field())
		}
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: message,
		})
	}

	return apierrors.NewValidationErrors(validationErrors)
}

// analysisView maps a stored analysis to its API representation
func (h *AnalysisHandler) analysisView(a *services.Analysis) api.AnalysisView {
	preview := h.service.Preview(a, 0)
	base := "/api/analysis/" + a.ID

	previewRows := make([][]domain.Value, preview.RowCount())
	for i := range previewRows {
		previewRows[i] = preview.Row(i)
	}

	return api.AnalysisView{
		ID:              a.ID,
		Filename:        a.Filename,
		Format:          a.Format,
		CreatedAt:       a.CreatedAt,
		Snapshot:        a.Snapshot(),
		IngestionNotes:  a.IngestionNotes,
		Transformations: a.CleaningReport.Transformations,
		Summary:         a.Summaries,
		Preview: api.TablePreview{
			Columns: preview.ColumnNames(),
			Rows:    previewRows,
			Total:   a.Cleaned.RowCount(),
		},
		ReportMarkdown: a.ReportMarkdown,
		Links: api.AnalysisLinks{
			Self:    base,
			Cleaned: base + "/download/cleaned",
			Report:  base + "/download/report",
			Charts:  base + "/charts",
			Export:  base + "/export",
		},
	}
}

// isResponseWritten checks if response has already been written
func isResponseWritten(w http.ResponseWriter) bool {
	if ww, ok := w.(interface{ Status() int }); ok {
		return ww.Status() != 0
	}
	return false
}
