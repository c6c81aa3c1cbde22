package room

import "sync"

// Registry holds the branches known to the system in insertion order.
type Registry struct {
	mu       sync.RWMutex
	branches []*Branch
}

func NewRegistry() *Registry {
	return &Registry{}
}

// AddBranch creates and registers a branch. Names are unique.
func (r *Registry) AddBranch(name string) (*Branch, error) {
	b, err := NewBranch(name)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.branches {
		if existing.Name == b.Name {
			return nil, ErrDuplicateBranch
		}
	}
	r.branches = append(r.branches, b)
	return b, nil
}

// GetBranch looks a branch up by name.
func (r *Registry) GetBranch(name string) (*Branch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.branches {
		if b.Name == name {
			return b, nil
		}
	}
	return nil, ErrBranchNotFound
}

// DeleteBranch removes the branch, and with it all of its rooms and their schedules.
func (r *Registry) DeleteBranch(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, b := range r.branches {
		if b.Name == name {
			r.branches = append(r.branches[:i], r.branches[i+1:]...)
			b.markRemoved()
			return true
		}
	}
	return false
}

// Branches returns the branches in insertion order.
func (r *Registry) Branches() []*Branch {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Branch, len(r.branches))
	copy(out, r.branches)
	return out
}
