package pool

import (
	"sort"

	"flashLedger/internal/model"
)

// Registry holds every initialized pool keyed by PoolId.
type Registry struct {
	pools map[model.PoolId]*Pool
}

func NewRegistry() *Registry {
	return &Registry{pools: make(map[model.PoolId]*Pool)}
}

func (r *Registry) Get(id model.PoolId) (*Pool, bool) {
	p, ok := r.pools[id]
	return p, ok
}

func (r *Registry) Put(id model.PoolId, p *Pool) {
	r.pools[id] = p
}

func (r *Registry) Delete(id model.PoolId) {
	delete(r.pools, id)
}

func (r *Registry) Has(id model.PoolId) bool {
	_, ok := r.pools[id]
	return ok
}

func (r *Registry) Len() int {
	return len(r.pools)
}

// IDs returns all registered pool ids in a stable hex order.
func (r *Registry) IDs() []model.PoolId {
	ids := make([]model.PoolId, 0, len(r.pools))
	for id := range r.pools {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Hex() < ids[j].Hex() })
	return ids
}
