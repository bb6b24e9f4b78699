package validation

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"datastudio/internal/config"
	apierrors "datastudio/internal/errors"
)

// UploadValidator checks uploaded dataset files before ingestion
type UploadValidator struct {
	logger   *slog.Logger
	maxBytes int64
}

// NewUploadValidator creates a new upload validator
func NewUploadValidator(logger *slog.Logger, maxBytes int64) *UploadValidator {
	if logger == nil {
		logger = slog.Default()
	}
	if maxBytes <= 0 {
		maxBytes = config.DefaultMaxUploadBytes
	}
	return &UploadValidator{
		logger:   logger,
		maxBytes: maxBytes,
	}
}

// ValidateUpload checks the filename and size of an uploaded file.
// Unsupported extensions surface the same message the analysis UI shows.
func (v *UploadValidator) ValidateUpload(filename string, size int64) error {
	if strings.TrimSpace(filename) == "" {
		v.logger.Warn("Upload rejected: missing filename")
		return apierrors.NewWithDetails(
			http.StatusBadRequest,
			"MISSING_PARAMETER",
			"Upload filename is required",
			nil,
		)
	}

	ext := Extension(filename)
	if !IsSupportedExtension(ext) {
		v.logger.Warn("Upload rejected: unsupported extension",
			slog.String("filename", filename),
			slog.String("extension", ext))
		return apierrors.NewUnsupportedFormatError(ext)
	}

	if size > v.maxBytes {
		v.logger.Warn("Upload rejected: file too large",
			slog.String("filename", filename),
			slog.Int64("size", size),
			slog.Int64("limit", v.maxBytes))
		return apierrors.NewWithDetails(
			http.StatusRequestEntityTooLarge,
			"PAYLOAD_TOO_LARGE",
			"Uploaded file exceeds the size limit",
			map[string]interface{}{
				"size":  size,
				"limit": v.maxBytes,
			},
		)
	}

	v.logger.Debug("Upload validated",
		slog.String("filename", filename),
		slog.String("extension", ext),
		slog.Int64("size", size))
	return nil
}

// MaxBytes returns the configured upload size limit.
func (v *UploadValidator) MaxBytes() int64 {
	return v.maxBytes
}

// Extension returns the lower-cased extension of filename, including the dot.
func Extension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// IsSupportedExtension reports whether ext names a readable dataset format.
func IsSupportedExtension(ext string) bool {
	for _, supported := range config.SupportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

// Stem returns the base name of filename with its final extension removed.
// "sales.v2.csv" becomes "sales.v2".
func Stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
