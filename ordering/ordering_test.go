package ordering

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextIndexAppends(t *testing.T) {
	assert.Equal(t, 0, NextIndex(nil))
	assert.Equal(t, 2, NextIndex([]Position{{ID: 1, OrderIndex: 0}, {ID: 2, OrderIndex: 1}}))
}

func TestRenumberAfterDeletingMiddle(t *testing.T) {
	// A(0) B(1) C(2), B removed
	changed := Renumber([]Position{{ID: 1, OrderIndex: 0}, {ID: 3, OrderIndex: 2}})
	assert.Equal(t, []Position{{ID: 3, OrderIndex: 1}}, changed)
}

func TestRenumberLastItemIsNoop(t *testing.T) {
	assert.Empty(t, Renumber(nil))
	assert.Empty(t, Renumber([]Position{{ID: 1, OrderIndex: 0}, {ID: 2, OrderIndex: 1}}))
}

func TestRenumberShiftsOnlyTail(t *testing.T) {
	for n := 1; n <= 8; n++ {
		for del := 0; del < n; del++ {
			var remaining []Position
			for i := 0; i < n; i++ {
				if i != del {
					remaining = append(remaining, Position{ID: uint(i + 1), OrderIndex: i})
				}
			}
			changed := Renumber(remaining)
			assert.Len(t, changed, n-1-del)
			for _, c := range changed {
				assert.Equal(t, int(c.ID)-2, c.OrderIndex, "item %d should move down by one", c.ID)
			}
		}
	}
}

func TestApplyExplicitOrder(t *testing.T) {
	members := []uint{10, 11, 12}

	out, err := ApplyExplicitOrder(members, []Position{{10, 2}, {11, 0}, {12, 1}})
	require.NoError(t, err)
	assert.Equal(t, []Position{{10, 2}, {11, 0}, {12, 1}}, out)

	out, err = ApplyExplicitOrder(members, []Position{{10, 5}, {11, 1}, {12, 9}})
	require.NoError(t, err)
	assert.Equal(t, []Position{{10, 1}, {11, 0}, {12, 2}}, out)
}

func TestApplyExplicitOrderRejectsMembershipMismatch(t *testing.T) {
	members := []uint{10, 11, 12}

	cases := map[string][]Position{
		"subset":    {{10, 0}, {11, 1}},
		"superset":  {{10, 0}, {11, 1}, {12, 2}, {13, 3}},
		"foreign":   {{10, 0}, {11, 1}, {99, 2}},
		"duplicate": {{10, 0}, {10, 1}, {11, 2}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ApplyExplicitOrder(members, req)
			assert.ErrorIs(t, err, ErrInvalidIDs)
		})
	}
}

// Random create/delete/reorder sequences keep the indexes dense.
func TestDenseUnderRandomMutations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var items []Position
	nextID := uint(1)

	for step := 0; step < 500; step++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(items) == 0:
			items = append(items, Position{ID: nextID, OrderIndex: NextIndex(items)})
			nextID++
		case op == 1:
			del := rng.Intn(len(items))
			items = append(items[:del:del], items[del+1:]...)
			for _, c := range Renumber(items) {
				for i := range items {
					if items[i].ID == c.ID {
						items[i].OrderIndex = c.OrderIndex
					}
				}
			}
		default:
			members := make([]uint, len(items))
			req := make([]Position, len(items))
			perm := rng.Perm(len(items))
			for i, it := range items {
				members[i] = it.ID
				req[i] = Position{ID: it.ID, OrderIndex: perm[i] * 3}
			}
			out, err := ApplyExplicitOrder(members, req)
			require.NoError(t, err)
			items = out
			sort.Slice(items, func(a, b int) bool { return items[a].OrderIndex < items[b].OrderIndex })
		}
		require.True(t, IsDense(items), "step %d: %v", step, items)
	}
}
