package debts

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/iflow-pos/iflow/internal/platform/httpx"
)

// Handler wires HTTP endpoints for provider debts.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers debt routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Post("/{debtID}/settle", h.handleSettle)
}

type createRequest struct {
	Debtor      string  `json:"debtor" validate:"required"`
	Description string  `json:"description"`
	AmountUSD   float64 `json:"amountUsd" validate:"required,gt=0"`
}

type settleRequest struct {
	AmountUSD float64 `json:"amountUsd" validate:"required,gt=0"`
	Wallet    string  `json:"wallet" validate:"required"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []Debt{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	debt, err := h.service.Create(r.Context(), CreateInput{
		Debtor:      req.Debtor,
		Description: req.Description,
		AmountUSD:   req.AmountUSD,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, debt)
}

func (h *Handler) handleSettle(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	debt, err := h.service.Settle(r.Context(), SettleInput{
		DebtID:    chi.URLParam(r, "debtID"),
		AmountUSD: req.AmountUSD,
		Wallet:    req.Wallet,
	})
	if err != nil {
		if errors.Is(err, ErrOverSettlement) {
			httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable", err.Error())
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, debt)
}
