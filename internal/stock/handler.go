package stock

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/iflow-pos/iflow/internal/platform/httpx"
	"github.com/iflow-pos/iflow/internal/store"
)

// Handler wires HTTP endpoints for stock management.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers stock routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleAdd)
	r.Get("/valuation", h.handleValuation)
	r.Put("/{itemID}", h.handleUpdate)
	r.Delete("/{itemID}", h.handleDelete)
}

type addRequest struct {
	Category       string            `json:"category" validate:"required"`
	Serial         string            `json:"serial"`
	Quantity       int               `json:"quantity" validate:"required,gt=0"`
	CostUSD        float64           `json:"costUsd" validate:"gte=0"`
	SuggestedPrice float64           `json:"suggestedPrice" validate:"gte=0"`
	Attributes     map[string]string `json:"attributes"`
	ProviderID     string            `json:"providerId"`
}

type updateRequest struct {
	Category       string            `json:"category" validate:"required"`
	Serial         string            `json:"serial"`
	Quantity       int               `json:"quantity" validate:"gte=0"`
	CostUSD        float64           `json:"costUsd" validate:"gte=0"`
	SuggestedPrice float64           `json:"suggestedPrice" validate:"gte=0"`
	Attributes     map[string]string `json:"attributes"`
	ProviderID     string            `json:"providerId"`
	Status         Status            `json:"status"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Item{}
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	item, err := h.service.Add(r.Context(), AddInput{
		Category:       req.Category,
		Serial:         req.Serial,
		Quantity:       req.Quantity,
		CostUSD:        req.CostUSD,
		SuggestedPrice: req.SuggestedPrice,
		Attributes:     req.Attributes,
		ProviderID:     req.ProviderID,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	item, err := h.service.Update(r.Context(), Item{
		ID:             chi.URLParam(r, "itemID"),
		Category:       req.Category,
		Serial:         req.Serial,
		Quantity:       req.Quantity,
		CostUSD:        req.CostUSD,
		SuggestedPrice: req.SuggestedPrice,
		Attributes:     req.Attributes,
		ProviderID:     req.ProviderID,
		Status:         req.Status,
	})
	if err != nil {
		if errors.Is(err, store.ErrDocNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "stock item not found")
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) handleValuation(w http.ResponseWriter, r *http.Request) {
	value, err := h.service.Valuation(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]float64{"valueUsd": value})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "itemID")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
