package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"marketdesk/internal/allocation"
	"marketdesk/internal/listing/models"
	"marketdesk/internal/platform/middleware"
	"marketdesk/internal/transport/http/shared"
	"marketdesk/pkg/domain"
	dErrors "marketdesk/pkg/domain-errors"
)

// Service defines the listing operations the handler depends on.
type Service interface {
	Create(ctx context.Context, req *models.CreateListingRequest) (*models.Listing, error)
	Get(ctx context.Context, id domain.ListingID) (*models.Listing, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Listing, error)
	Update(ctx context.Context, id domain.ListingID, req *models.UpdateListingRequest) (*models.Listing, error)
	Delete(ctx context.Context, id domain.ListingID) error
	Submit(ctx context.Context, id domain.ListingID) (*models.Listing, error)
	Approve(ctx context.Context, id domain.ListingID) (*models.Listing, error)
	Reject(ctx context.Context, id domain.ListingID, req *models.RejectListingRequest) (*models.Listing, error)
	MarkSold(ctx context.Context, id domain.ListingID) (*models.Listing, error)
	Reopen(ctx context.Context, id domain.ListingID) (*models.Listing, error)
	CheckBreakdown(category allocation.Category, values map[string]*float64) allocation.Result
	DistributeBreakdown(category allocation.Category, values map[string]*float64) (map[string]float64, allocation.Result)
}

// Handler exposes the admin listing endpoints.
type Handler struct {
	logger         *slog.Logger
	listings       Service
	adminTokenHash string
}

// New creates a listing Handler.
func New(listings Service, logger *slog.Logger, adminTokenHash string) *Handler {
	return &Handler{
		logger:         logger,
		listings:       listings,
		adminTokenHash: adminTokenHash,
	}
}

// Register mounts the admin listing and allocation routes.
func (h *Handler) Register(r chi.Router) {
	listingRouter := chi.NewRouter()
	listingRouter.Use(h.middleware()...)
	listingRouter.Post("/", h.handleCreate)
	listingRouter.Get("/", h.handleList)
	listingRouter.Get("/{id}", h.handleGet)
	listingRouter.Put("/{id}", h.handleUpdate)
	listingRouter.Delete("/{id}", h.handleDelete)
	listingRouter.Post("/{id}/submit", h.handleSubmit)
	listingRouter.Post("/{id}/approve", h.handleApprove)
	listingRouter.Post("/{id}/reject", h.handleReject)
	listingRouter.Post("/{id}/sold", h.handleMarkSold)
	listingRouter.Post("/{id}/reopen", h.handleReopen)

	allocationRouter := chi.NewRouter()
	allocationRouter.Use(h.middleware()...)
	allocationRouter.Post("/check", h.handleCheckAllocation)
	allocationRouter.Post("/distribute", h.handleDistributeAllocation)

	r.Mount("/admin/listings", listingRouter)
	r.Mount("/admin/allocations", allocationRouter)
}

func (h *Handler) middleware() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.Recovery(h.logger),
		middleware.RequestID,
		middleware.Metadata,
		middleware.Logger(h.logger),
		middleware.Timeout(30 * time.Second),
		middleware.ContentTypeJSON,
		middleware.RequireAdminToken(h.adminTokenHash, h.logger),
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	l, err := h.listings.Create(ctx, &req)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to create listing")
		return
	}

	shared.WriteJSON(w, http.StatusCreated, l)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var filter models.ListFilter
	if raw := r.URL.Query().Get("type"); raw != "" {
		t, err := domain.ParseListingType(raw)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		filter.Type = t
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, err := domain.ParseListingStatus(raw)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		filter.Status = st
	}

	listings, err := h.listings.List(ctx, filter)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to list listings")
		return
	}

	shared.WriteJSON(w, http.StatusOK, listResponse{Listings: listings, Count: len(listings)})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.listingID(w, r)
	if !ok {
		return
	}

	l, err := h.listings.Get(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to load listing")
		return
	}

	shared.WriteJSON(w, http.StatusOK, l)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.listingID(w, r)
	if !ok {
		return
	}

	var req models.UpdateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	l, err := h.listings.Update(ctx, id, &req)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to update listing")
		return
	}

	shared.WriteJSON(w, http.StatusOK, l)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.listingID(w, r)
	if !ok {
		return
	}

	if err := h.listings.Delete(ctx, id); err != nil {
		h.writeServiceError(ctx, w, err, "failed to delete listing")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.listings.Submit, "failed to submit listing")
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.listings.Approve, "failed to approve listing")
}

func (h *Handler) handleMarkSold(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.listings.MarkSold, "failed to mark listing sold")
}

func (h *Handler) handleReopen(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.listings.Reopen, "failed to reopen listing")
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.listingID(w, r)
	if !ok {
		return
	}

	var req models.RejectListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	l, err := h.listings.Reject(ctx, id, &req)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to reject listing")
		return
	}

	shared.WriteJSON(w, http.StatusOK, l)
}

func (h *Handler) handleCheckAllocation(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeAllocation(w, r)
	if !ok {
		return
	}

	result := h.listings.CheckBreakdown(req.category, req.Values)
	shared.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleDistributeAllocation(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeAllocation(w, r)
	if !ok {
		return
	}

	values, result := h.listings.DistributeBreakdown(req.category, req.Values)
	shared.WriteJSON(w, http.StatusOK, allocationDistributeResponse{
		Values: values,
		Result: result,
	})
}

// transition runs one of the status-transition operations, which all share the
// same request and response shape.
func (h *Handler) transition(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, id domain.ListingID) (*models.Listing, error), logMsg string) {
	ctx := r.Context()

	id, ok := h.listingID(w, r)
	if !ok {
		return
	}

	l, err := op(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, err, logMsg)
		return
	}

	shared.WriteJSON(w, http.StatusOK, l)
}

func (h *Handler) listingID(w http.ResponseWriter, r *http.Request) (domain.ListingID, bool) {
	id, err := domain.ParseListingID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return domain.ListingID{}, false
	}
	return id, true
}

func (h *Handler) decodeAllocation(w http.ResponseWriter, r *http.Request) (*allocationRequest, bool) {
	var req allocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}
	if err := req.resolve(); err != nil {
		shared.WriteError(w, err)
		return nil, false
	}
	return &req, true
}

// writeServiceError logs unexpected failures and writes the error envelope.
// Expected (coded) errors pass straight through to the client.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, logMsg string) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, logMsg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
	}
	shared.WriteError(w, err)
}
