package ordering

import (
	"context"
	"sync"

	"github.com/goliatone/go-portal/internal/content"
	"github.com/goliatone/go-portal/internal/domain"
	"github.com/goliatone/go-portal/internal/logging"
	"github.com/goliatone/go-portal/pkg/interfaces"
	"github.com/google/uuid"
)

// Engine maintains the manual order of each partition. Operations on the
// same partition are serialized; the computed order is persisted through a
// single UpdatePositions call.
type Engine struct {
	repo   content.Repository
	logger interfaces.Logger

	mu    sync.Mutex
	locks map[content.Partition]*sync.Mutex
}

// Option customises an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine builds an ordering engine over repo.
func NewEngine(repo content.Repository, opts ...Option) *Engine {
	engine := &Engine{
		repo:   repo,
		logger: logging.NoOp(),
		locks:  make(map[content.Partition]*sync.Mutex),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(engine)
		}
	}
	return engine
}

// Reorder applies an explicit full or partial id sequence to a partition.
func (e *Engine) Reorder(ctx context.Context, partition content.Partition, ids []uuid.UUID) ([]uuid.UUID, error) {
	return e.apply(ctx, partition, "reorder", func(current []uuid.UUID) []uuid.UUID {
		return Reorder(current, ids)
	})
}

// MoveUp swaps the item with its predecessor in its partition.
func (e *Engine) MoveUp(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	partition, err := e.partitionOf(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.apply(ctx, partition, "move_up", func(current []uuid.UUID) []uuid.UUID {
		return MoveUp(current, id)
	})
}

// MoveDown swaps the item with its successor in its partition.
func (e *Engine) MoveDown(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	partition, err := e.partitionOf(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.apply(ctx, partition, "move_down", func(current []uuid.UUID) []uuid.UUID {
		return MoveDown(current, id)
	})
}

// DragReorder moves the item to targetIndex in its partition.
func (e *Engine) DragReorder(ctx context.Context, id uuid.UUID, targetIndex int) ([]uuid.UUID, error) {
	partition, err := e.partitionOf(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.apply(ctx, partition, "drag", func(current []uuid.UUID) []uuid.UUID {
		return Drag(current, id, targetIndex)
	})
}

// Order returns the current order of a partition.
func (e *Engine) Order(ctx context.Context, partition content.Partition) ([]uuid.UUID, error) {
	items, err := e.repo.List(ctx, partition.Kind, partition.Locale)
	if err != nil {
		return nil, domain.StoreUnavailable(err, "list order")
	}
	return content.IDs(items), nil
}

func (e *Engine) partitionOf(ctx context.Context, id uuid.UUID) (content.Partition, error) {
	item, err := e.repo.GetByID(ctx, id)
	if err != nil {
		return content.Partition{}, domain.StoreUnavailable(err, "get item")
	}
	return content.PartitionOf(item), nil
}

func (e *Engine) apply(ctx context.Context, partition content.Partition, op string, compute func([]uuid.UUID) []uuid.UUID) ([]uuid.UUID, error) {
	lock := e.partitionLock(partition)
	lock.Lock()
	defer lock.Unlock()

	items, err := e.repo.List(ctx, partition.Kind, partition.Locale)
	if err != nil {
		return nil, domain.StoreUnavailable(err, op)
	}
	current := content.IDs(items)
	if len(current) == 0 {
		return []uuid.UUID{}, nil
	}

	next := compute(current)
	if !IsPermutation(current, next) {
		detail := &domain.OrderInconsistencyError{
			Kind:     partition.Kind,
			Locale:   partition.Locale,
			Expected: len(current),
			Got:      len(next),
			Detail:   op + " produced a sequence that is not a permutation of the partition",
		}
		logging.WithPartition(e.logger, string(partition.Kind), partition.Locale).Error("ordering.invariant_violation",
			"operation", op,
			"current", current,
			"computed", next,
			"error", detail,
		)
		return current, domain.OrderInconsistency(detail)
	}

	index := make(map[uuid.UUID]int, len(next))
	for idx, id := range next {
		index[id] = idx
	}
	positions := make(map[uuid.UUID]int)
	for _, item := range items {
		if want := index[item.ID]; want != item.Position {
			positions[item.ID] = want
		}
	}
	if err := e.repo.UpdatePositions(ctx, partition, positions); err != nil {
		return current, domain.StoreUnavailable(err, op)
	}
	return next, nil
}

func (e *Engine) partitionLock(partition content.Partition) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[partition]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[partition] = lock
	}
	return lock
}
