// Package stream serves the live state feed. Each connection gets its own
// container and sync manager, so one slow client never stalls another.
package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iflow-pos/iflow/internal/livesync"
	"github.com/iflow-pos/iflow/internal/observability"
	"github.com/iflow-pos/iflow/internal/platform/httpx"
	"github.com/iflow-pos/iflow/internal/shared"
	"github.com/iflow-pos/iflow/internal/state"
	"github.com/iflow-pos/iflow/internal/store"
)

const keepAliveInterval = 25 * time.Second

// Handler serves server-sent state snapshots.
type Handler struct {
	logger      *slog.Logger
	store       store.Store
	metrics     *observability.Metrics
	debounce    time.Duration
	defaultRate float64
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, st store.Store, metrics *observability.Metrics, debounce time.Duration, defaultRate float64) *Handler {
	return &Handler{
		logger:      logger,
		store:       st,
		metrics:     metrics,
		debounce:    debounce,
		defaultRate: defaultRate,
	}
}

// MountRoutes registers the stream route on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	identity, err := shared.RequireIdentity(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "streaming unsupported")
		return
	}

	container := state.NewContainer()
	manager := livesync.NewManager(h.store, container, h.logger, livesync.Options{
		Debounce:    h.debounce,
		DefaultRate: h.defaultRate,
		Metrics:     h.metrics,
	})

	// Latest-wins mailbox: the subscriber runs under the sync manager's
	// lock and must never block, so an undelivered snapshot is simply
	// replaced by the next one.
	mailbox := make(chan state.AppState, 1)
	handle := container.Subscribe(func(snap state.AppState) {
		for {
			select {
			case mailbox <- snap:
				return
			default:
				select {
				case <-mailbox:
				default:
				}
			}
		}
	})
	defer container.Unsubscribe(handle)

	if err := manager.Start(r.Context(), identity); err != nil {
		httpx.RespondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	h.metrics.StreamOpened()
	defer func() {
		manager.Stop()
		container.Reset()
		h.metrics.StreamClosed()
	}()

	if err := writeEvent(w, flusher, container.Read()); err != nil {
		return
	}

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case snap := <-mailbox:
			if err := writeEvent(w, flusher, snap); err != nil {
				h.logger.Debug("stream write failed", slog.Any("error", err))
				return
			}
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, snap state.AppState) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: state\ndata: %s\n\n", payload); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
