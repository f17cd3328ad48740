package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.mongodb.org/mongo-driver/bson"

	apperrors "auctionserver/internal/errors"
	"auctionserver/internal/middleware"
	"auctionserver/internal/storage"
)

// DocumentReader is the read side of a collection used by ResourceHandler.
type DocumentReader interface {
	Name() string
	List(ctx context.Context, limit int64) ([]bson.M, error)
	Get(ctx context.Context, id string) (bson.M, error)
}

// ListResponse is the body of a collection listing.
type ListResponse struct {
	Collection string   `json:"collection"`
	Count      int      `json:"count"`
	Items      []bson.M `json:"items"`
}

// ListLimitCookie carries a client's preferred page size for GET /.
const ListLimitCookie = "list_limit"

// SearchRequest is the body of POST /search, sent as JSON or as a form.
type SearchRequest struct {
	Limit int64 `json:"limit"`
}

// ResourceHandler serves one route group as a read-only document collection.
type ResourceHandler struct {
	reader   DocumentReader
	resource string
	errors   *apperrors.ErrorHandler
	logger   *slog.Logger
}

// NewResourceHandler creates a handler for the named resource
func NewResourceHandler(resource string, reader DocumentReader, eh *apperrors.ErrorHandler, logger *slog.Logger) *ResourceHandler {
	return &ResourceHandler{
		reader:   reader,
		resource: resource,
		errors:   eh,
		logger:   logger.With(slog.String("handler", resource)),
	}
}

// Routes returns the router mounted under the group prefix.
func (h *ResourceHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.NotFound(h.errors.NotFound)
	r.MethodNotAllowed(h.errors.MethodNotAllowed)
	r.Get("/", h.errors.Wrap(h.List))
	r.Post("/search", h.errors.Wrap(h.Search))
	r.Get("/{id}", h.errors.Wrap(h.Get))
	return r
}

// List handles GET /?limit=n. Without a query limit the list_limit cookie
// applies.
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) error {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		raw, _ = middleware.CookieValue(r.Context(), ListLimitCookie)
	}
	limit, err := parseLimit(raw)
	if err != nil {
		return err
	}
	return h.list(w, r, limit)
}

// Search handles POST /search with {"limit": n} or limit=n.
func (h *ResourceHandler) Search(w http.ResponseWriter, r *http.Request) error {
	var limit int64
	if form := middleware.FormFrom(r.Context()); form != nil {
		n, err := parseLimit(form.Get("limit"))
		if err != nil {
			return err
		}
		limit = n
	} else {
		var req SearchRequest
		if err := middleware.DecodeJSONBody(r, &req); err != nil {
			return err
		}
		if req.Limit < 0 {
			return apperrors.InvalidParameterError("limit", errors.New("must be a positive integer"))
		}
		limit = req.Limit
	}
	return h.list(w, r, limit)
}

func (h *ResourceHandler) list(w http.ResponseWriter, r *http.Request, limit int64) error {
	docs, err := h.reader.List(r.Context(), limit)
	if err != nil {
		return h.storageError(r, err)
	}

	render.JSON(w, r, ListResponse{
		Collection: h.reader.Name(),
		Count:      len(docs),
		Items:      docs,
	})
	return nil
}

// parseLimit reads a positive limit; empty means the repository default.
func parseLimit(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		if err == nil {
			err = errors.New("must be a positive integer")
		}
		return 0, apperrors.InvalidParameterError("limit", err)
	}
	return n, nil
}

// Get handles GET /{id}
func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) error {
	doc, err := h.reader.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return h.storageError(r, err)
	}
	render.JSON(w, r, doc)
	return nil
}

func (h *ResourceHandler) storageError(r *http.Request, err error) error {
	switch {
	case errors.Is(err, storage.ErrInvalidID):
		return apperrors.InvalidParameterError("id", err)
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.NotFoundError(h.resource).Wrap(err)
	case errors.Is(err, storage.ErrNotConnected):
		return apperrors.ErrServiceUnavailable.Wrap(err)
	}
	h.logger.ErrorContext(r.Context(), "storage query failed", slog.String("error", err.Error()))
	return err
}
