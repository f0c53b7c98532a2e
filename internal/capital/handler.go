package capital

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/iflow-pos/iflow/internal/platform/httpx"
)

// WindowFunc resolves history query parameters into inclusive bounds.
// ok is false when no window was requested.
type WindowFunc func(period, from, to string, now time.Time) (start, end time.Time, ok bool, err error)

// Handler wires HTTP endpoints for capital summaries and adjustments.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	window    WindowFunc
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, window WindowFunc) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), window: window}
}

// MountRoutes registers capital routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleSummary)
	r.Post("/adjust", h.handleAdjust)
	r.Get("/history", h.handleHistory)
}

type adjustRequest struct {
	Wallet string  `json:"wallet" validate:"required"`
	Amount float64 `json:"amount" validate:"required"`
	Reason string  `json:"reason"`
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.service.Summary(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sum)
}

func (h *Handler) handleAdjust(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sum, err := h.service.Adjust(r.Context(), AdjustInput{
		Wallet: req.Wallet,
		Amount: req.Amount,
		Reason: req.Reason,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sum)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter HistoryFilter
	if h.window != nil {
		start, end, ok, err := h.window(q.Get("range"), q.Get("from"), q.Get("to"), time.Now())
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		if ok {
			filter.From, filter.To = start, end
		}
	}
	entries, err := h.service.History(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if entries == nil {
		entries = []HistoryEntry{}
	}
	httpx.JSON(w, http.StatusOK, entries)
}
