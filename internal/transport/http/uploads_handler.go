package http

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "auctionserver/internal/errors"
)

// UploadsHandler serves stored upload files. Directories are never listed.
type UploadsHandler struct {
	root   http.FileSystem
	errors *apperrors.ErrorHandler
	logger *slog.Logger
}

// NewUploadsHandler creates a handler rooted at dir
func NewUploadsHandler(dir string, eh *apperrors.ErrorHandler, logger *slog.Logger) *UploadsHandler {
	return &UploadsHandler{
		root:   http.Dir(dir),
		errors: eh,
		logger: logger.With(slog.String("handler", "uploads")),
	}
}

// Serve handles GET /uploads/*
func (h *UploadsHandler) Serve(w http.ResponseWriter, r *http.Request) error {
	name := "/" + chi.URLParam(r, "*")
	if hasDotSegment(name) {
		return apperrors.NotFoundError("file")
	}

	f, err := h.root.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return apperrors.NotFoundError("file")
		}
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return apperrors.NotFoundError("file")
	}

	h.logger.DebugContext(r.Context(), "serving upload",
		slog.String("name", name),
		slog.Int64("size", info.Size()))
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return nil
}

// hasDotSegment reports whether any path segment is hidden (".env", ".git/x").
func hasDotSegment(name string) bool {
	for _, seg := range strings.Split(name, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}
