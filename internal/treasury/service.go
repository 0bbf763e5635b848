package treasury

import (
	"context"
	"log/slog"

	"vaultgate/internal/event"
	id "vaultgate/pkg/domain"
	dErrors "vaultgate/pkg/domain-errors"
)

// Service exposes deposits and the guarded transfer over a Store. Transfer
// is the wallet engine's value-release step and must never partially apply;
// that property comes from the store implementations.
type Service struct {
	store     Store
	logger    *slog.Logger
	publisher event.Publisher
	metrics   *Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithPublisher(publisher event.Publisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Deposit credits the pool and emits a deposit notification. Any principal
// may deposit; only release is quorum-gated.
func (s *Service) Deposit(ctx context.Context, sender id.Address, amount int64) error {
	if sender.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "sender cannot be the zero address")
	}
	if amount <= 0 {
		return dErrors.New(dErrors.CodeValidation, "deposit amount must be positive")
	}

	if err := s.store.AddToPool(ctx, amount); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to credit pool")
	}

	s.emit(ctx, event.Deposit(sender, amount))
	if s.metrics != nil {
		s.metrics.IncDeposits(amount)
	}
	return nil
}

// Transfer releases value from the pool to a recipient account. It either
// fully applies or fully fails; callers decide what a failure means.
func (s *Service) Transfer(ctx context.Context, recipient id.Address, amount int64) error {
	err := s.store.Transfer(ctx, recipient, amount)
	if err != nil && s.metrics != nil {
		s.metrics.IncTransferFailures()
	}
	return err
}

// PoolBalance returns the current pooled value.
func (s *Service) PoolBalance(ctx context.Context) (int64, error) {
	balance, err := s.store.PoolBalance(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read pool balance")
	}
	return balance, nil
}

// AccountBalance returns the value credited to a recipient so far.
func (s *Service) AccountBalance(ctx context.Context, addr id.Address) (int64, error) {
	balance, err := s.store.AccountBalance(ctx, addr)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read account balance")
	}
	return balance, nil
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
