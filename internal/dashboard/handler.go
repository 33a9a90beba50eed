package dashboard

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"marketdesk/internal/platform/middleware"
	"marketdesk/internal/transport/http/shared"
)

// Handler exposes the admin dashboard endpoint.
type Handler struct {
	logger         *slog.Logger
	dashboard      *Service
	adminTokenHash string
}

func NewHandler(dashboard *Service, logger *slog.Logger, adminTokenHash string) *Handler {
	return &Handler{
		logger:         logger,
		dashboard:      dashboard,
		adminTokenHash: adminTokenHash,
	}
}

// Register mounts the dashboard route.
func (h *Handler) Register(r chi.Router) {
	dashRouter := chi.NewRouter()
	dashRouter.Use(middleware.Recovery(h.logger))
	dashRouter.Use(middleware.RequestID)
	dashRouter.Use(middleware.Logger(h.logger))
	dashRouter.Use(middleware.Timeout(15 * time.Second))
	dashRouter.Use(middleware.RequireAdminToken(h.adminTokenHash, h.logger))
	dashRouter.Get("/", h.handleSnapshot)

	r.Mount("/admin/dashboard", dashRouter)
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snapshot, err := h.dashboard.Snapshot(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build dashboard snapshot",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, snapshot)
}
