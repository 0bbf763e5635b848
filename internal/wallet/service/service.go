// Package service implements the transaction lifecycle state machine:
// proposal, approval bookkeeping, quorum evaluation and guarded execution.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"vaultgate/internal/event"
	"vaultgate/internal/wallet/lock"
	"vaultgate/internal/wallet/metrics"
	"vaultgate/internal/wallet/models"
	"vaultgate/internal/wallet/registry"
	id "vaultgate/pkg/domain"
	dErrors "vaultgate/pkg/domain-errors"
	"vaultgate/pkg/platform/sentinel"
)

const executionLockKey = "vaultgate:execution"

// Ledger persists transactions and approval sets. The service owns ordering
// and serialization; the ledger is plain storage.
type Ledger interface {
	Append(ctx context.Context, recipient id.Address, value int64) (*models.Transaction, error)
	Get(ctx context.Context, txID uint64) (*models.Transaction, error)
	AddApproval(ctx context.Context, txID uint64, owner id.Address) error
	HasApproved(ctx context.Context, txID uint64, owner id.Address) (bool, error)
	SetExecuted(ctx context.Context, txID uint64, executed bool) error
}

// Vault releases pooled value. Transfer either fully applies or fully fails.
type Vault interface {
	Transfer(ctx context.Context, recipient id.Address, amount int64) error
}

// ExecutionLock extends the execute guard across replicas. Optional.
type ExecutionLock interface {
	Acquire(ctx context.Context, key string) (func(context.Context) error, error)
}

// Service is the transaction ledger and execution engine. All mutating
// operations serialize on one mutex; execute holds it across the value
// release so no interleaving is possible. Nested calls triggered by the
// release itself are rejected via a context marker before the mutex, which
// turns a would-be deadlock into an explicit error.
type Service struct {
	registry *registry.Registry
	ledger   Ledger
	vault    Vault

	mu sync.Mutex

	logger    *slog.Logger
	publisher event.Publisher
	metrics   *metrics.Metrics
	execLock  ExecutionLock
	tracer    trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithPublisher sets the sink for lifecycle notifications.
func WithPublisher(publisher event.Publisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithExecutionLock adds a distributed lock around execute for multi-replica
// deployments.
func WithExecutionLock(l ExecutionLock) Option {
	return func(s *Service) {
		s.execLock = l
	}
}

// New constructs the engine over a registry, ledger and vault.
func New(reg *registry.Registry, ledger Ledger, vault Vault, opts ...Option) *Service {
	s := &Service{
		registry: reg,
		ledger:   ledger,
		vault:    vault,
		tracer:   otel.Tracer("vaultgate/wallet"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// inFlightKey marks a context derived inside the value-release step.
type inFlightKey struct{}

func markInFlight(ctx context.Context) context.Context {
	return context.WithValue(ctx, inFlightKey{}, true)
}

func isInFlight(ctx context.Context) bool {
	marked, _ := ctx.Value(inFlightKey{}).(bool)
	return marked
}

// rejectReentrant guards every mutating entry point. It must run before the
// mutex is taken: a nested call from the release step already holds the
// mutex through its parent and would otherwise deadlock.
func (s *Service) rejectReentrant(ctx context.Context, operation string) error {
	if !isInFlight(ctx) {
		return nil
	}
	if s.metrics != nil {
		s.metrics.ReentrancyRejected.Inc()
	}
	if s.logger != nil {
		s.logger.WarnContext(ctx, "reentrant call rejected", "operation", operation)
	}
	return &models.ReentrantCallError{Operation: operation}
}

// Propose appends a new transaction and returns its id. Ids are dense and
// monotonically increasing from 0. The proposer is not auto-approved;
// approval is a distinct explicit step. Value sufficiency is not checked
// here, only at execution.
func (s *Service) Propose(ctx context.Context, caller, recipient id.Address, value int64) (uint64, error) {
	ctx, span := s.tracer.Start(ctx, "wallet.Propose")
	defer span.End()

	if err := s.rejectReentrant(ctx, "propose"); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.registry.IsOwner(caller) {
		return 0, &models.NotOwnerError{Caller: caller}
	}
	if recipient.IsZero() {
		return 0, models.ErrZeroAddressRecipient
	}
	if value < 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "value cannot be negative")
	}

	tx, err := s.ledger.Append(ctx, recipient, value)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store proposal")
	}
	span.SetAttributes(attribute.Int64("wallet.transaction_id", int64(tx.ID)))

	s.emit(ctx, event.TransactionProposed(tx.ID, caller, recipient, value))
	if s.metrics != nil {
		s.metrics.ProposalsTotal.Inc()
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "transaction proposed",
			"transaction_id", tx.ID,
			"proposer", caller,
			"recipient", recipient,
			"value", value,
		)
	}
	return tx.ID, nil
}

// Approve records the caller's approval of a transaction. Repeat approval by
// the same owner is an idempotent success reported via notification, not an
// error. Check order is fixed: membership, existence, already-approved
// short-circuit, executed, mutate. The executed check sits after the
// short-circuit so a fresh approver of an executed transaction still fails
// with TransactionAlreadyExecuted.
func (s *Service) Approve(ctx context.Context, caller id.Address, txID uint64) error {
	ctx, span := s.tracer.Start(ctx, "wallet.Approve")
	defer span.End()
	span.SetAttributes(attribute.Int64("wallet.transaction_id", int64(txID)))

	if err := s.rejectReentrant(ctx, "approve"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.registry.IsOwner(caller) {
		return &models.NotOwnerError{Caller: caller}
	}

	tx, err := s.ledger.Get(ctx, txID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return &models.InvalidTransactionNonceError{ID: txID}
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load transaction")
	}

	approved, err := s.ledger.HasApproved(ctx, txID, caller)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check approval")
	}
	if approved {
		s.emit(ctx, event.TransactionAlreadyApproved(txID, caller))
		if s.metrics != nil {
			s.metrics.DuplicateApprovals.Inc()
		}
		return nil
	}

	if tx.Executed {
		return &models.TransactionAlreadyExecutedError{ID: txID}
	}

	if err := s.ledger.AddApproval(ctx, txID, caller); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record approval")
	}

	s.emit(ctx, event.TransactionApproved(txID, caller))
	if s.metrics != nil {
		s.metrics.ApprovalsTotal.Inc()
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "transaction approved",
			"transaction_id", txID,
			"approver", caller,
		)
	}
	return nil
}

// Execute releases the transaction's value once quorum is met. The executed
// flag is committed before the release and rolled back if the release
// fails, so a nested observer never sees an executable transaction, and a
// failed call leaves no partial state.
func (s *Service) Execute(ctx context.Context, caller id.Address, txID uint64) error {
	ctx, span := s.tracer.Start(ctx, "wallet.Execute")
	defer span.End()
	span.SetAttributes(attribute.Int64("wallet.transaction_id", int64(txID)))

	if err := s.rejectReentrant(ctx, "execute"); err != nil {
		return err
	}

	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		if s.metrics != nil {
			s.metrics.ExecutionDuration.Observe(time.Since(start).Seconds())
		}
	}()

	if s.execLock != nil {
		release, err := s.execLock.Acquire(ctx, executionLockKey)
		if errors.Is(err, lock.ErrHeld) {
			return dErrors.New(dErrors.CodeConflict, "another execution is in progress")
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to acquire execution lock")
		}
		defer func() {
			if err := release(ctx); err != nil && s.logger != nil {
				s.logger.WarnContext(ctx, "failed to release execution lock", "error", err)
			}
		}()
	}

	err := s.execute(ctx, caller, txID)
	if err != nil && s.metrics != nil {
		s.metrics.ExecutionFailures.Inc()
	}
	return err
}

func (s *Service) execute(ctx context.Context, caller id.Address, txID uint64) error {
	if !s.registry.IsOwner(caller) {
		return &models.NotOwnerError{Caller: caller}
	}

	tx, err := s.ledger.Get(ctx, txID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return &models.InvalidTransactionNonceError{ID: txID}
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load transaction")
	}

	if tx.Executed {
		return &models.TransactionAlreadyExecutedError{ID: txID}
	}
	if required := s.registry.RequiredApprovals(); tx.ApprovalCount < required {
		return &models.NotEnoughApprovalsError{
			ID:        txID,
			Approvals: tx.ApprovalCount,
			Required:  required,
		}
	}

	// Commit before acting: the flag flips first so the release step can
	// never observe (or re-trigger) an executable transaction.
	if err := s.ledger.SetExecuted(ctx, txID, true); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark transaction executed")
	}

	if err := s.vault.Transfer(markInFlight(ctx), tx.Recipient, tx.Value); err != nil {
		if rbErr := s.ledger.SetExecuted(ctx, txID, false); rbErr != nil && s.logger != nil {
			// The flag is stuck true with no value moved; this needs
			// an operator, so log loudly.
			s.logger.ErrorContext(ctx, "CRITICAL: failed to roll back executed flag",
				"transaction_id", txID,
				"error", rbErr,
			)
		}
		return &models.TransferFailedError{
			ID:        txID,
			Recipient: tx.Recipient,
			Value:     tx.Value,
			Err:       err,
		}
	}

	s.emit(ctx, event.TransactionExecuted(txID, caller))
	if s.metrics != nil {
		s.metrics.ExecutionsTotal.Inc()
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "transaction executed",
			"transaction_id", txID,
			"executor", caller,
			"recipient", tx.Recipient,
			"value", tx.Value,
		)
	}
	return nil
}

// GetTransaction returns the ledger record for an id.
func (s *Service) GetTransaction(ctx context.Context, txID uint64) (*models.Transaction, error) {
	tx, err := s.ledger.Get(ctx, txID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, &models.InvalidTransactionNonceError{ID: txID}
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load transaction")
	}
	return tx, nil
}

// HasApproved reports whether an owner approved a transaction.
func (s *Service) HasApproved(ctx context.Context, txID uint64, owner id.Address) (bool, error) {
	approved, err := s.ledger.HasApproved(ctx, txID, owner)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, &models.InvalidTransactionNonceError{ID: txID}
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check approval")
	}
	return approved, nil
}

// IsOwner answers a registry membership query.
func (s *Service) IsOwner(addr id.Address) bool {
	return s.registry.IsOwner(addr)
}

// Owners returns the registry in insertion order.
func (s *Service) Owners() []id.Address {
	return s.registry.Owners()
}

// RequiredApprovals returns the quorum threshold.
func (s *Service) RequiredApprovals() int {
	return s.registry.RequiredApprovals()
}

func (s *Service) emit(ctx context.Context, ev event.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Emit(ctx, ev); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit event",
			"type", ev.Type,
			"error", err,
		)
	}
}
