package wallet

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
	svc      *Service
	minTopUp int64
}

func NewHandler(svc *Service, minTopUp int64) *Handler {
	return &Handler{svc: svc, minTopUp: minTopUp}
}

// Get returns the caller's wallet, creating it on first access
// GET /api/v1/wallet
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	wallet, err := h.svc.GetOrCreateWallet(r.Context(), userID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, wallet)
}

// Balance returns the current balance
// GET /api/v1/wallet/balance
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	balance, err := h.svc.GetBalance(r.Context(), userID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, balance)
}

// TopUp credits the caller's wallet (simulated one-shot payment)
// POST /api/v1/wallet/topup
func (h *Handler) TopUp(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req TopUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Struct(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	// Minimum top-up is a boundary rule, not a ledger rule
	if req.Amount < h.minTopUp {
		response.BadRequest(w, "amount below minimum top-up")
		return
	}

	result, err := h.svc.TopUp(r.Context(), userID, req.Amount, req.IdempotencyKey, req.Metadata)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, result)
}

// History returns the caller's ledger, newest first
// GET /api/v1/wallet/transactions
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	history, err := h.svc.GetTransactionHistory(r.Context(), userID, limit, offset)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.WithMeta(w, history.Transactions, response.Meta{
		Total:  history.Total,
		Limit:  history.Limit,
		Offset: history.Offset,
	})
}

// Routes returns wallet routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/", h.Get)
	r.Get("/balance", h.Balance)
	r.Post("/topup", h.TopUp)
	r.Get("/transactions", h.History)
	return r
}

// WriteError maps ledger errors onto the API envelope. Other domains that
// charge the wallet reuse it so failures surface consistently.
func WriteError(w http.ResponseWriter, err error) {
	if ibe, ok := IsInsufficientBalance(err); ok {
		response.PaymentRequired(w, "insufficient wallet balance", map[string]string{
			"required":  strconv.FormatInt(ibe.Required, 10),
			"available": strconv.FormatInt(ibe.Available, 10),
		})
		return
	}

	switch {
	case errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrCategoryRequired),
		errors.Is(err, ErrDescriptionRequired),
		errors.Is(err, ErrReferenceRequired),
		errors.Is(err, ErrInvalidStatus):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrWalletNotActive):
		response.Conflict(w, "wallet is not active")
	case errors.Is(err, ErrWalletNotFound):
		response.NotFound(w, "wallet not found")
	default:
		response.InternalError(w)
	}
}
