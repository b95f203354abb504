package admin

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hireon/hireon-api/internal/domain/wallet"
	"github.com/hireon/hireon-api/internal/pkg/response"
	"github.com/hireon/hireon-api/internal/pkg/validator"
)

// GrantRequest for POST /admin/wallets/{userID}/grant
type GrantRequest struct {
	Amount         int64  `json:"amount" validate:"required,gt=0"`
	IdempotencyKey string `json:"idempotency_key" validate:"required,max=128"`
	Description    string `json:"description" validate:"required,max=500"`
}

// Handler exposes wallet controls to operators
type Handler struct {
	wallets *wallet.Service
}

func NewHandler(wallets *wallet.Service) *Handler {
	return &Handler{wallets: wallets}
}

// Freeze blocks debits on a wallet; credits still apply
// POST /api/v1/admin/wallets/{userID}/freeze
func (h *Handler) Freeze(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, wallet.StatusFrozen)
}

// Close permanently closes a wallet
// POST /api/v1/admin/wallets/{userID}/close
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, wallet.StatusClosed)
}

// Activate re-enables a frozen or closed wallet
// POST /api/v1/admin/wallets/{userID}/activate
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, wallet.StatusActive)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request, status wallet.Status) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		response.BadRequest(w, "invalid user id")
		return
	}

	if err := h.wallets.SetStatus(r.Context(), userID, status); err != nil {
		wallet.WriteError(w, err)
		return
	}
	response.OK(w, map[string]string{"status": string(status)})
}

// Grant credits a user's wallet (compensation, refunds, promotions)
// POST /api/v1/admin/wallets/{userID}/grant
func (h *Handler) Grant(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		response.BadRequest(w, "invalid user id")
		return
	}

	var req GrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Struct(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	result, err := h.wallets.Grant(r.Context(), userID, req.Amount, req.IdempotencyKey, req.Description)
	if err != nil {
		wallet.WriteError(w, err)
		return
	}
	response.OK(w, result)
}

// GetWallet returns a user's wallet for inspection
// GET /api/v1/admin/wallets/{userID}
func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		response.BadRequest(w, "invalid user id")
		return
	}

	wlt, err := h.wallets.GetOrCreateWallet(r.Context(), userID)
	if err != nil {
		wallet.WriteError(w, err)
		return
	}
	response.OK(w, wlt)
}

// SearchTransactions returns filtered ledger entries
// GET /api/v1/admin/transactions
func (h *Handler) SearchTransactions(w http.ResponseWriter, r *http.Request) {
	filters, err := parseSearchFilters(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	items, err := h.wallets.SearchTransactions(r.Context(), filters)
	if err != nil {
		wallet.WriteError(w, err)
		return
	}
	response.OK(w, items)
}

func parseSearchFilters(r *http.Request) (wallet.SearchFilters, error) {
	q := r.URL.Query()
	var f wallet.SearchFilters

	if v := q.Get("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, errInvalidFilter("user_id")
		}
		f.UserID = &id
	}
	if v := q.Get("type"); v != "" {
		t := wallet.TransactionType(v)
		if t != wallet.TypeCredit && t != wallet.TypeDebit {
			return f, errInvalidFilter("type")
		}
		f.Type = &t
	}
	if v := q.Get("category"); v != "" {
		c := wallet.Category(v)
		f.Category = &c
	}
	if v := q.Get("date_from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, errInvalidFilter("date_from")
		}
		f.DateFrom = &t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, errInvalidFilter("date_to")
		}
		f.DateTo = &t
	}

	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Offset, _ = strconv.Atoi(q.Get("offset"))
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f, nil
}

type filterError string

func errInvalidFilter(field string) filterError {
	return filterError("invalid filter: " + field)
}

func (e filterError) Error() string { return string(e) }

// Routes returns admin routes; caller mounts them behind auth and the
// admin role check.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/wallets/{userID}", h.GetWallet)
	r.Post("/wallets/{userID}/freeze", h.Freeze)
	r.Post("/wallets/{userID}/close", h.Close)
	r.Post("/wallets/{userID}/activate", h.Activate)
	r.Post("/wallets/{userID}/grant", h.Grant)
	r.Get("/transactions", h.SearchTransactions)
	return r
}
