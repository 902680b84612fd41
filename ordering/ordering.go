// Package ordering keeps the order_index of sibling rows a dense, zero based
// sequence.
package ordering

import (
	"errors"
	"sort"
)

// ErrInvalidIDs is returned when a requested order does not name exactly the
// current members of the collection.
var ErrInvalidIDs = errors.New("ordering: invalid identifiers")

// Position pairs a row id with its order index
type Position struct {
	ID         uint `json:"id"`
	OrderIndex int  `json:"order_index"`
}

// NextIndex is the append position for a new item
func NextIndex(existing []Position) int {
	return len(existing)
}

// Renumber assigns 0..n-1 to items in the order given and returns only the
// positions whose index changed.
func Renumber(items []Position) []Position {
	var changed []Position
	for i, item := range items {
		if item.OrderIndex != i {
			changed = append(changed, Position{ID: item.ID, OrderIndex: i})
		}
	}
	return changed
}

// ApplyExplicitOrder validates a caller supplied order against the current
// members. The ids must match the membership exactly: no unknown ids, no
// duplicates, none missing. Requested indexes are then compacted to 0..n-1,
// ties keeping their request order, so an already dense request comes back
// unchanged.
func ApplyExplicitOrder(members []uint, requested []Position) ([]Position, error) {
	if len(requested) != len(members) {
		return nil, ErrInvalidIDs
	}
	known := make(map[uint]bool, len(members))
	for _, id := range members {
		known[id] = true
	}
	seen := make(map[uint]bool, len(requested))
	for _, p := range requested {
		if !known[p.ID] || seen[p.ID] {
			return nil, ErrInvalidIDs
		}
		seen[p.ID] = true
	}

	idx := make([]int, len(requested))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return requested[idx[a]].OrderIndex < requested[idx[b]].OrderIndex
	})

	out := make([]Position, len(requested))
	for dense, i := range idx {
		out[i] = Position{ID: requested[i].ID, OrderIndex: dense}
	}
	return out, nil
}

// IsDense reports whether the indexes are exactly {0..n-1}
func IsDense(items []Position) bool {
	seen := make([]bool, len(items))
	for _, p := range items {
		if p.OrderIndex < 0 || p.OrderIndex >= len(items) || seen[p.OrderIndex] {
			return false
		}
		seen[p.OrderIndex] = true
	}
	return true
}
