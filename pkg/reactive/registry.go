package reactive

// Registry maps target → key → Dep.
//
// Entries are created on the first tracked read of a key and removed as soon
// as their last subscriber leaves, so a target nobody observes any more costs
// nothing here. Releasing an Object drops all of its entries at once.
type Registry struct {
	targets map[any]map[string]*Dep
}

func newRegistry() *Registry {
	return &Registry{targets: make(map[any]map[string]*Dep)}
}

// Lookup returns the Dep for (target, key), or nil.
func (r *Registry) Lookup(target any, key string) *Dep {
	keys, ok := r.targets[target]
	if !ok {
		return nil
	}
	return keys[key]
}

// Len returns the number of targets with at least one entry.
func (r *Registry) Len() int {
	return len(r.targets)
}

// DepCount returns the total number of (target, key) entries.
func (r *Registry) DepCount() int {
	n := 0
	for _, keys := range r.targets {
		n += len(keys)
	}
	return n
}

// depFor returns the Dep for (target, key), creating it if needed.
func (r *Registry) depFor(target any, key string) *Dep {
	keys, ok := r.targets[target]
	if !ok {
		keys = make(map[string]*Dep)
		r.targets[target] = keys
	}
	d, ok := keys[key]
	if !ok {
		d = newDep()
		d.registry = r
		d.target = target
		d.key = key
		keys[key] = d
	}
	return d
}

// prune removes an emptied Dep from the registry.
func (r *Registry) prune(d *Dep) {
	keys, ok := r.targets[d.target]
	if !ok {
		return
	}
	if keys[d.key] != d {
		return
	}
	delete(keys, d.key)
	if len(keys) == 0 {
		delete(r.targets, d.target)
	}
}

// drop removes every entry of target.
func (r *Registry) drop(target any) {
	for _, d := range r.targets[target] {
		d.registry = nil
	}
	delete(r.targets, target)
}
