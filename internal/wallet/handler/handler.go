package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"vaultgate/internal/platform/metrics"
	"vaultgate/internal/platform/middleware"
	"vaultgate/internal/transport/http/shared"
	"vaultgate/internal/wallet/models"
	id "vaultgate/pkg/domain"
	dErrors "vaultgate/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/wallet-mocks.go -package=mocks Service

// Service defines the interface for wallet operations.
type Service interface {
	Propose(ctx context.Context, caller, recipient id.Address, value int64) (uint64, error)
	Approve(ctx context.Context, caller id.Address, txID uint64) error
	Execute(ctx context.Context, caller id.Address, txID uint64) error
	GetTransaction(ctx context.Context, txID uint64) (*models.Transaction, error)
	HasApproved(ctx context.Context, txID uint64, owner id.Address) (bool, error)
	IsOwner(addr id.Address) bool
	Owners() []id.Address
	RequiredApprovals() int
}

// Handler handles transaction and owner endpoints.
type Handler struct {
	logger       *slog.Logger
	wallet       Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new wallet Handler.
func New(
	wallet Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		wallet:       wallet,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the wallet routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	txRouter := chi.NewRouter()
	h.use(txRouter)
	txRouter.Post("/", h.handlePropose)
	txRouter.Post("/{id}/approvals", h.handleApprove)
	txRouter.Post("/{id}/execute", h.handleExecute)
	txRouter.Get("/{id}", h.handleGetTransaction)
	txRouter.Get("/{id}/approvals/{address}", h.handleHasApproved)
	r.Mount("/transactions", txRouter)

	ownerRouter := chi.NewRouter()
	h.use(ownerRouter)
	ownerRouter.Get("/", h.handleListOwners)
	ownerRouter.Get("/{address}", h.handleIsOwner)
	r.Mount("/owners", ownerRouter)
}

func (h *Handler) use(r chi.Router) {
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.Latency(h.metrics))
	r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
}

func (h *Handler) handlePropose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req models.ProposeTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	recipient, err := id.ParseAddress(req.Recipient)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	txID, err := h.wallet.Propose(ctx, caller, recipient, req.Value)
	if err != nil {
		h.logFailure(ctx, "propose failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, models.ProposeTransactionResponse{ID: txID})
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	txID, ok := h.transactionID(w, r)
	if !ok {
		return
	}

	if err := h.wallet.Approve(ctx, caller, txID); err != nil {
		h.logFailure(ctx, "approve failed", err)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleExecute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	txID, ok := h.transactionID(w, r)
	if !ok {
		return
	}

	if err := h.wallet.Execute(ctx, caller, txID); err != nil {
		h.logFailure(ctx, "execute failed", err)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	txID, ok := h.transactionID(w, r)
	if !ok {
		return
	}

	tx, err := h.wallet.GetTransaction(r.Context(), txID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, models.NewTransactionResponse(tx))
}

func (h *Handler) handleHasApproved(w http.ResponseWriter, r *http.Request) {
	txID, ok := h.transactionID(w, r)
	if !ok {
		return
	}
	owner, err := id.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	approved, err := h.wallet.HasApproved(r.Context(), txID, owner)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, models.ApprovalStatusResponse{
		TransactionID: txID,
		Owner:         owner.String(),
		Approved:      approved,
	})
}

func (h *Handler) handleListOwners(w http.ResponseWriter, r *http.Request) {
	owners := h.wallet.Owners()
	out := make([]string, 0, len(owners))
	for _, o := range owners {
		out = append(out, o.String())
	}
	shared.WriteJSON(w, http.StatusOK, models.OwnersResponse{
		Owners:            out,
		RequiredApprovals: h.wallet.RequiredApprovals(),
	})
}

func (h *Handler) handleIsOwner(w http.ResponseWriter, r *http.Request) {
	addr, err := id.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, models.OwnerStatusResponse{
		Address: addr.String(),
		Owner:   h.wallet.IsOwner(addr),
	})
}

// caller extracts the authenticated principal set by RequireAuth.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (id.Address, bool) {
	ctx := r.Context()
	raw := middleware.GetCaller(ctx)
	if raw == "" {
		// Should never happen when RequireAuth is configured.
		h.logger.ErrorContext(ctx, "caller missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return "", false
	}
	caller, err := id.ParseAddress(raw)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "caller is not a principal address"))
		return "", false
	}
	return caller, true
}

func (h *Handler) transactionID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	txID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "transaction id must be a non-negative integer"))
		return 0, false
	}
	return txID, true
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
}
