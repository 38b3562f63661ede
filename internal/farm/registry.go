package farm

import (
	"github.com/elys-network/farm/internal/types"
)

// PoolRegistry is the ordered, append-only collection of pools. Indexes are
// assigned sequentially from zero and pools are never removed.
type PoolRegistry struct {
	pools []*types.Pool
}

func NewPoolRegistry() *PoolRegistry {
	return &PoolRegistry{pools: make([]*types.Pool, 0)}
}

// Append registers a new pool, stamps it with its index, and returns that
// index.
func (r *PoolRegistry) Append(pool *types.Pool) types.PoolIndex {
	index := types.PoolIndex(len(r.pools))
	pool.Index = index
	r.pools = append(r.pools, pool)
	return index
}

func (r *PoolRegistry) Get(index types.PoolIndex) (*types.Pool, error) {
	if int(index) >= len(r.pools) {
		return nil, ErrPoolNotFound
	}
	return r.pools[index], nil
}

func (r *PoolRegistry) Len() int {
	return len(r.pools)
}

// Each visits every pool in index order.
func (r *PoolRegistry) Each(visit func(*types.Pool)) {
	for _, pool := range r.pools {
		visit(pool)
	}
}

// PositionKey identifies one user's position in one pool.
type PositionKey struct {
	Pool types.PoolIndex
	User string
}

// PositionRegistry is the sparse map from (pool, user) to position. Entries
// are inserted once and never removed.
type PositionRegistry struct {
	positions map[PositionKey]*types.Position
}

func NewPositionRegistry() *PositionRegistry {
	return &PositionRegistry{positions: make(map[PositionKey]*types.Position)}
}

// Register inserts a freshly created position. Fails with
// ErrDuplicateRegistration if the (pool, user) pair already has one.
func (r *PositionRegistry) Register(pool types.PoolIndex, user string, position *types.Position) error {
	key := PositionKey{Pool: pool, User: user}
	if _, exists := r.positions[key]; exists {
		return ErrDuplicateRegistration
	}
	r.positions[key] = position
	return nil
}

func (r *PositionRegistry) Get(pool types.PoolIndex, user string) (*types.Position, error) {
	position, exists := r.positions[PositionKey{Pool: pool, User: user}]
	if !exists {
		return nil, ErrPositionNotFound
	}
	return position, nil
}

func (r *PositionRegistry) Has(pool types.PoolIndex, user string) bool {
	_, exists := r.positions[PositionKey{Pool: pool, User: user}]
	return exists
}

// TotalStakedIn recomputes the stake sum for a pool by walking every
// position. The pool's own TotalStaked is maintained incrementally; this
// exists for consistency checks.
func (r *PositionRegistry) TotalStakedIn(pool types.PoolIndex) uint64 {
	var total uint64
	for key, position := range r.positions {
		if key.Pool == pool {
			total += position.Staked
		}
	}
	return total
}
