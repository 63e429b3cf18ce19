package ordering

import (
	"slices"

	"github.com/google/uuid"
)

// Reorder places the requested ids first, in request order, followed by the
// remaining current ids in their prior relative order. Requested ids that
// are not current and repeated ids are skipped, so the result is always a
// permutation of current.
func Reorder(current, requested []uuid.UUID) []uuid.UUID {
	present := make(map[uuid.UUID]bool, len(current))
	for _, id := range current {
		present[id] = true
	}

	result := make([]uuid.UUID, 0, len(current))
	placed := make(map[uuid.UUID]bool, len(current))
	for _, id := range requested {
		if present[id] && !placed[id] {
			result = append(result, id)
			placed[id] = true
		}
	}
	for _, id := range current {
		if !placed[id] {
			result = append(result, id)
			placed[id] = true
		}
	}
	return result
}

// MoveUp swaps id with its predecessor. The first id and unknown ids leave
// the order unchanged.
func MoveUp(current []uuid.UUID, id uuid.UUID) []uuid.UUID {
	result := slices.Clone(current)
	idx := slices.Index(result, id)
	if idx <= 0 {
		return result
	}
	result[idx-1], result[idx] = result[idx], result[idx-1]
	return result
}

// MoveDown swaps id with its successor. The last id and unknown ids leave
// the order unchanged.
func MoveDown(current []uuid.UUID, id uuid.UUID) []uuid.UUID {
	result := slices.Clone(current)
	idx := slices.Index(result, id)
	if idx < 0 || idx >= len(result)-1 {
		return result
	}
	result[idx], result[idx+1] = result[idx+1], result[idx]
	return result
}

// Drag removes id and reinserts it at target, clamped to the valid range.
// The spliced sequence is fed through Reorder, so dragging is a reorder with
// a full id list.
func Drag(current []uuid.UUID, id uuid.UUID, target int) []uuid.UUID {
	idx := slices.Index(current, id)
	if idx < 0 {
		return Reorder(current, nil)
	}
	spliced := slices.Delete(slices.Clone(current), idx, idx+1)
	target = max(0, min(target, len(spliced)))
	spliced = slices.Insert(spliced, target, id)
	return Reorder(current, spliced)
}

// IsPermutation reports whether next holds exactly the ids of current, each
// once.
func IsPermutation(current, next []uuid.UUID) bool {
	if len(current) != len(next) {
		return false
	}
	counts := make(map[uuid.UUID]int, len(current))
	for _, id := range current {
		counts[id]++
	}
	for _, id := range next {
		counts[id]--
		if counts[id] < 0 {
			return false
		}
	}
	return true
}
