package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vaultgate/internal/platform/metrics"
	"vaultgate/internal/platform/middleware"
	"vaultgate/internal/transport/http/shared"
	id "vaultgate/pkg/domain"
	dErrors "vaultgate/pkg/domain-errors"
)

// Service defines the interface for treasury operations.
type Service interface {
	Deposit(ctx context.Context, sender id.Address, amount int64) error
	PoolBalance(ctx context.Context) (int64, error)
}

// DepositRequest is the POST /treasury/deposits body.
type DepositRequest struct {
	Amount int64 `json:"amount"`
}

// BalanceResponse reports the pooled value.
type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

// Handler handles treasury endpoints.
type Handler struct {
	logger       *slog.Logger
	treasury     Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new treasury Handler.
func New(
	treasury Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		treasury:     treasury,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the treasury routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	treasuryRouter := chi.NewRouter()
	treasuryRouter.Use(middleware.Recovery(h.logger))
	treasuryRouter.Use(middleware.RequestID)
	treasuryRouter.Use(middleware.Logger(h.logger))
	treasuryRouter.Use(middleware.Timeout(30 * time.Second))
	treasuryRouter.Use(middleware.ContentTypeJSON)
	treasuryRouter.Use(middleware.Latency(h.metrics))
	treasuryRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

	treasuryRouter.Post("/deposits", h.handleDeposit)
	treasuryRouter.Get("/balance", h.handleBalance)

	r.Mount("/treasury", treasuryRouter)
}

func (h *Handler) handleDeposit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sender, err := id.ParseAddress(middleware.GetCaller(ctx))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "caller is not a principal address"))
		return
	}

	var req DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.treasury.Deposit(ctx, sender, req.Amount); err != nil {
		h.logger.WarnContext(ctx, "deposit failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.treasury.PoolBalance(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, BalanceResponse{Balance: balance})
}
