package categories

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/iflow-pos/iflow/internal/platform/httpx"
)

// Handler wires HTTP endpoints for category management.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers category routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleSave)
	r.Put("/{categoryID}", h.handleSaveExisting)
	r.Delete("/{categoryID}", h.handleDelete)
}

type saveRequest struct {
	Name       string      `json:"name" validate:"required"`
	Attributes []Attribute `json:"attributes"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []Category{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "")
}

func (h *Handler) handleSaveExisting(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, chi.URLParam(r, "categoryID"))
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, id string) {
	var req saveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	cat, err := h.service.Save(r.Context(), Category{
		ID:         id,
		Name:       req.Name,
		Attributes: req.Attributes,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	httpx.JSON(w, status, cat)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "categoryID")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
