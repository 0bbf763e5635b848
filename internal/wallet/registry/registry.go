// Package registry holds the immutable owner set and quorum threshold. Both
// are fixed at construction; there is no add, remove or rotate operation.
package registry

import (
	"context"
	"log/slog"

	"vaultgate/internal/event"
	"vaultgate/internal/wallet/models"
	id "vaultgate/pkg/domain"
)

// Registry answers membership queries for the fixed owner set. Safe for
// concurrent use: all state is written once in New and only read afterwards.
type Registry struct {
	owners   []id.Address
	members  map[id.Address]struct{}
	required int

	logger    *slog.Logger
	publisher event.Publisher
}

type Option func(r *Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithPublisher sets the sink for owner_added notifications.
func WithPublisher(publisher event.Publisher) Option {
	return func(r *Registry) {
		r.publisher = publisher
	}
}

// New validates the owner list and quorum and builds the registry.
//
// Validation order: empty set, then threshold bounds against the raw input
// length, then each entry in input order (zero address before duplicate).
// Duplicates are a hard error, never silently deduplicated. One owner_added
// notification is emitted per owner, in input order, only after the whole
// input validates.
func New(ctx context.Context, owners []id.Address, requiredApprovals int, opts ...Option) (*Registry, error) {
	if len(owners) == 0 {
		return nil, models.ErrNoOwners
	}
	if requiredApprovals == 0 || requiredApprovals > len(owners) {
		return nil, &models.InvalidRequiredApprovalsError{
			Required:   requiredApprovals,
			OwnerCount: len(owners),
		}
	}

	members := make(map[id.Address]struct{}, len(owners))
	for i, owner := range owners {
		if owner.IsZero() {
			return nil, &models.ZeroAddressOwnerError{Position: i}
		}
		if _, ok := members[owner]; ok {
			return nil, &models.OwnerAlreadyExistsError{Owner: owner}
		}
		members[owner] = struct{}{}
	}

	r := &Registry{
		owners:   append([]id.Address{}, owners...),
		members:  members,
		required: requiredApprovals,
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, owner := range r.owners {
		r.emit(ctx, event.OwnerAdded(owner))
	}
	return r, nil
}

// IsOwner reports membership. O(1), no side effects.
func (r *Registry) IsOwner(addr id.Address) bool {
	_, ok := r.members[addr]
	return ok
}

// Owners returns the owner list in original insertion order.
func (r *Registry) Owners() []id.Address {
	return append([]id.Address{}, r.owners...)
}

// RequiredApprovals returns the quorum threshold.
func (r *Registry) RequiredApprovals() int {
	return r.required
}

// OwnerCount returns the number of registered owners.
func (r *Registry) OwnerCount() int {
	return len(r.owners)
}

func (r *Registry) emit(ctx context.Context, ev event.Event) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Emit(ctx, ev); err != nil && r.logger != nil {
		r.logger.WarnContext(ctx, "failed to emit event",
			"type", ev.Type,
			"error", err,
		)
	}
}
