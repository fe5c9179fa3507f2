package reactive

// Dep is the set of subscribers of one (target, key) pair, or of one
// Signal or Computed. Membership is a set; iteration follows subscription
// order.
type Dep struct {
	subs  []*Effect
	index map[*Effect]struct{}

	// Registry coordinates, used to prune the entry when it empties.
	// Zero for deps owned by a Signal or Computed.
	registry *Registry
	target   any
	key      string
}

func newDep() *Dep {
	return &Dep{index: make(map[*Effect]struct{})}
}

// Len returns the number of subscribers.
func (d *Dep) Len() int {
	return len(d.subs)
}

// Has reports whether e is subscribed.
func (d *Dep) Has(e *Effect) bool {
	_, ok := d.index[e]
	return ok
}

// add subscribes e. Returns false if it already was.
func (d *Dep) add(e *Effect) bool {
	if _, ok := d.index[e]; ok {
		return false
	}
	d.index[e] = struct{}{}
	d.subs = append(d.subs, e)
	return true
}

// remove unsubscribes e, keeping the order of the rest, and prunes the
// registry entry when the set becomes empty.
func (d *Dep) remove(e *Effect) {
	if _, ok := d.index[e]; !ok {
		return
	}
	delete(d.index, e)
	for i, s := range d.subs {
		if s == e {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			break
		}
	}
	if len(d.subs) == 0 && d.registry != nil {
		d.registry.prune(d)
	}
}

// snapshot copies the subscriber list so notification can mutate the set.
func (d *Dep) snapshot() []*Effect {
	out := make([]*Effect, len(d.subs))
	copy(out, d.subs)
	return out
}
