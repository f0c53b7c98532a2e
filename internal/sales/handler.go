package sales

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/iflow-pos/iflow/internal/platform/httpx"
	"github.com/iflow-pos/iflow/internal/stock"
)

// Handler wires HTTP endpoints for checkout and settlements.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers sales routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCheckout)
	r.Post("/{saleID}/settle", h.handleSettle)
}

type checkoutItemRequest struct {
	StockID      string  `json:"stockId" validate:"required"`
	Quantity     int     `json:"quantity"`
	SalePriceUSD float64 `json:"salePriceUsd" validate:"gte=0"`
}

type tradeInRequest struct {
	Category   string            `json:"category"`
	Serial     string            `json:"serial"`
	ValueUSD   float64           `json:"valueUsd" validate:"gte=0"`
	Attributes map[string]string `json:"attributes"`
}

type checkoutRequest struct {
	ClientID      string                `json:"clientId"`
	Items         []checkoutItemRequest `json:"items" validate:"required,min=1,dive"`
	Payments      map[string]float64    `json:"payments"`
	TradeIn       *tradeInRequest       `json:"tradeIn"`
	CommissionUSD float64               `json:"commissionUsd" validate:"gte=0"`
	Salesperson   string                `json:"salesperson"`
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
		list = []Sale{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	input := CheckoutInput{
		ClientID:      req.ClientID,
		Payments:      req.Payments,
		CommissionUSD: req.CommissionUSD,
		Salesperson:   req.Salesperson,
	}
	for _, it := range req.Items {
		input.Items = append(input.Items, CheckoutItem{
			StockID:      it.StockID,
			Quantity:     it.Quantity,
			SalePriceUSD: it.SalePriceUSD,
		})
	}
	if req.TradeIn != nil {
		input.TradeIn = &TradeIn{
			Category:   req.TradeIn.Category,
			Serial:     req.TradeIn.Serial,
			ValueUSD:   req.TradeIn.ValueUSD,
			Attributes: req.TradeIn.Attributes,
		}
	}

	sale, err := h.service.Checkout(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, stock.ErrInsufficientStock), errors.Is(err, ErrOverpaid):
			httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable", err.Error())
		default:
			httpx.RespondError(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
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
	sale, err := h.service.Settle(r.Context(), SettleInput{
		SaleID:    chi.URLParam(r, "saleID"),
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
	httpx.JSON(w, http.StatusOK, sale)
}
