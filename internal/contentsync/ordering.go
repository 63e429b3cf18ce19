package contentsync

import (
	"context"

	"github.com/goliatone/go-portal/internal/authz"
	"github.com/goliatone/go-portal/internal/content"
	"github.com/goliatone/go-portal/internal/domain"
	"github.com/goliatone/go-portal/pkg/interfaces"
	"github.com/google/uuid"
)

// Reorder applies ids to the partition. Ids missing from the request keep
// their relative order after the requested ones.
func (s *Service) Reorder(ctx context.Context, principal interfaces.Principal, kind domain.Kind, requested string, ids []uuid.UUID) ([]*content.Item, error) {
	if err := authz.RequireAdmin(principal, "reorder "+string(kind)); err != nil {
		return nil, err
	}
	partition := content.Partition{Kind: kind, Locale: s.locales.Resolve(requested)}
	_, err := s.engine.Reorder(ctx, partition, ids)
	return s.ordered(ctx, partition, err)
}

// MoveUp swaps an item with its predecessor.
func (s *Service) MoveUp(ctx context.Context, principal interfaces.Principal, id uuid.UUID) ([]*content.Item, error) {
	return s.move(ctx, principal, "move up", id, s.engine.MoveUp)
}

// MoveDown swaps an item with its successor.
func (s *Service) MoveDown(ctx context.Context, principal interfaces.Principal, id uuid.UUID) ([]*content.Item, error) {
	return s.move(ctx, principal, "move down", id, s.engine.MoveDown)
}

// Drag moves an item to targetIndex, clamped to the partition bounds.
func (s *Service) Drag(ctx context.Context, principal interfaces.Principal, id uuid.UUID, targetIndex int) ([]*content.Item, error) {
	return s.move(ctx, principal, "drag", id, func(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
		return s.engine.DragReorder(ctx, id, targetIndex)
	})
}

func (s *Service) move(ctx context.Context, principal interfaces.Principal, action string, id uuid.UUID, op func(context.Context, uuid.UUID) ([]uuid.UUID, error)) ([]*content.Item, error) {
	if err := authz.RequireAdmin(principal, action); err != nil {
		return nil, err
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.StoreUnavailable(err, action)
	}
	_, err = op(ctx, id)
	return s.ordered(ctx, content.PartitionOf(item), err)
}

// ordered lists the partition after an ordering call. An inconsistent order
// was already logged by the engine and left the partition untouched, so it
// is reported to the caller as a no-op.
func (s *Service) ordered(ctx context.Context, partition content.Partition, opErr error) ([]*content.Item, error) {
	if opErr != nil && !domain.IsOrderInconsistency(opErr) {
		return nil, opErr
	}
	items, err := s.repo.List(ctx, partition.Kind, partition.Locale)
	if err != nil {
		return nil, domain.StoreUnavailable(err, "list")
	}
	return items, nil
}
