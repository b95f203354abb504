package profile

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hireon/hireon-api/internal/domain/wallet"
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

// Upsert saves the viewer's profile
// PUT /api/v1/profiles/me
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Struct(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	result, err := h.svc.Upsert(r.Context(), middleware.GetUserID(r.Context()), &req)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, result)
}

// GetMine returns the viewer's profile
// GET /api/v1/profiles/me
func (h *Handler) GetMine(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetMine(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, result)
}

// Get returns a profile, contacts redacted unless unlocked
// GET /api/v1/profiles/{profileID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	profileID, err := uuid.Parse(chi.URLParam(r, "profileID"))
	if err != nil {
		response.BadRequest(w, "invalid profile id")
		return
	}

	result, err := h.svc.Get(r.Context(), middleware.GetUserID(r.Context()), profileID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, result)
}

// Unlock pays for access to a profile's contact details
// POST /api/v1/profiles/{profileID}/unlock
func (h *Handler) Unlock(w http.ResponseWriter, r *http.Request) {
	profileID, err := uuid.Parse(chi.URLParam(r, "profileID"))
	if err != nil {
		response.BadRequest(w, "invalid profile id")
		return
	}

	result, err := h.svc.Unlock(r.Context(), middleware.GetUserID(r.Context()), profileID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, result)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrProfileNotFound):
		response.NotFound(w, "profile not found")
	case errors.Is(err, ErrOwnProfile):
		response.Conflict(w, "cannot unlock own profile")
	default:
		wallet.WriteError(w, err)
	}
}

// Routes returns profile routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Put("/me", h.Upsert)
	r.Get("/me", h.GetMine)
	r.Get("/{profileID}", h.Get)
	r.With(middleware.RequireEmployer()).Post("/{profileID}/unlock", h.Unlock)
	return r
}
