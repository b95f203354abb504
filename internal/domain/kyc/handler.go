package kyc

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hireon/hireon-api/internal/middleware"
	"github.com/hireon/hireon-api/internal/pkg/response"
	"github.com/hireon/hireon-api/internal/pkg/validator"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Submit files a verification request
// POST /api/v1/kyc
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Struct(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	result, err := h.svc.Submit(r.Context(), middleware.GetUserID(r.Context()), &req)
	if err != nil {
		if errors.Is(err, ErrPendingExists) {
			response.Conflict(w, "a pending submission already exists")
			return
		}
		response.InternalError(w)
		return
	}
	response.Created(w, result)
}

// GetMine returns the viewer's latest submission
// GET /api/v1/kyc/me
func (h *Handler) GetMine(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetMine(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		if errors.Is(err, ErrSubmissionNotFound) {
			response.NotFound(w, "no submission found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, result)
}

// ListPending returns submissions awaiting review
// GET /api/v1/admin/kyc/pending
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	subs, total, err := h.svc.ListPending(r.Context(), limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.WithMeta(w, subs, response.Meta{Total: total, Limit: limit, Offset: offset})
}

// Review approves or rejects a pending submission
// POST /api/v1/admin/kyc/{submissionID}/review
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	submissionID, err := uuid.Parse(chi.URLParam(r, "submissionID"))
	if err != nil {
		response.BadRequest(w, "invalid submission id")
		return
	}

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Struct(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	result, err := h.svc.Review(r.Context(), middleware.GetUserID(r.Context()), submissionID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrSubmissionNotFound):
			response.NotFound(w, "submission not found")
		case errors.Is(err, ErrAlreadyReviewed):
			response.Conflict(w, "submission already reviewed")
		default:
			response.InternalError(w)
		}
		return
	}
	response.OK(w, result)
}

// Routes returns user-facing kyc routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/", h.Submit)
	r.Get("/me", h.GetMine)
	return r
}

// AdminRoutes returns review routes; caller mounts them behind the
// admin role check.
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/pending", h.ListPending)
	r.Post("/{submissionID}/review", h.Review)
	return r
}
