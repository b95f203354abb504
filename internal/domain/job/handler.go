package job

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

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

// Create posts a new job
// POST /api/v1/jobs
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Struct(req); details != nil {
		response.ValidationError(w, details)
		return
	}
	if req.SalaryMin != nil && req.SalaryMax != nil && *req.SalaryMin > *req.SalaryMax {
		response.BadRequest(w, "salary_min cannot exceed salary_max")
		return
	}

	result, err := h.svc.Create(r.Context(), middleware.GetUserID(r.Context()), &req)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.Created(w, result)
}

// Get returns one job
// GET /api/v1/jobs/{jobID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		response.BadRequest(w, "invalid job id")
		return
	}

	result, err := h.svc.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			response.NotFound(w, "job not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, result)
}

// List returns open jobs
// GET /api/v1/jobs
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	jobs, total, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.WithMeta(w, jobs, response.Meta{Total: total, Limit: limit, Offset: offset})
}

// ListMine returns the employer's own jobs
// GET /api/v1/jobs/my
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	jobs, total, err := h.svc.ListMine(r.Context(), middleware.GetUserID(r.Context()), limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.WithMeta(w, jobs, response.Meta{Total: total, Limit: limit, Offset: offset})
}

// Close closes an open job
// POST /api/v1/jobs/{jobID}/close
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		response.BadRequest(w, "invalid job id")
		return
	}

	if err := h.svc.Close(r.Context(), middleware.GetUserID(r.Context()), jobID); err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, map[string]string{"status": string(StatusClosed)})
}

// Promote charges the promotion fee and boosts the job in listings
// POST /api/v1/jobs/{jobID}/promote
func (h *Handler) Promote(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		response.BadRequest(w, "invalid job id")
		return
	}

	result, err := h.svc.Promote(r.Context(), middleware.GetUserID(r.Context()), jobID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, result)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrJobNotFound):
		response.NotFound(w, "job not found")
	case errors.Is(err, ErrNotJobOwner):
		response.Forbidden(w, "job belongs to another employer")
	case errors.Is(err, ErrAlreadyPromoted):
		response.Conflict(w, "job is already promoted")
	case errors.Is(err, ErrJobClosed):
		response.Conflict(w, "job is closed")
	default:
		// Wallet failures (insufficient balance, frozen wallet) keep
		// their own mapping.
		wallet.WriteError(w, err)
	}
}

// Routes returns job routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{jobID}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireEmployer())
		r.Post("/", h.Create)
		r.Get("/my", h.ListMine)
		r.Post("/{jobID}/close", h.Close)
		r.Post("/{jobID}/promote", h.Promote)
	})
	return r
}

func pageParams(r *http.Request) (int, int) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}
