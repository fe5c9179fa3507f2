package vdom

import verrors "github.com/vango-dev/vloop/internal/errors"

// patchChildren reconciles the children of n1 and n2 inside container.
// Children are either a text or a node list; every transition between the
// two is handled here.
func (r *Renderer) patchChildren(n1, n2 *VNode, container, anchor Node, parent *Instance) {
	c1, c2 := n1.Children, n2.Children
	prevShape, nextShape := n1.shape(), n2.shape()

	switch {
	case nextShape.Has(ShapeTextChildren):
		if prevShape.Has(ShapeArrayChildren) {
			r.unmountChildren(c1)
		}
		if !prevShape.Has(ShapeTextChildren) || n1.Text != n2.Text {
			r.host.SetElementText(container, n2.Text)
		}

	case nextShape.Has(ShapeArrayChildren):
		switch {
		case prevShape.Has(ShapeArrayChildren):
			if hasKeys(c1) || hasKeys(c2) {
				r.patchKeyedChildren(c1, c2, container, anchor, parent)
			} else {
				r.patchUnkeyedChildren(c1, c2, container, anchor, parent)
			}
		case prevShape.Has(ShapeTextChildren):
			r.host.SetElementText(container, "")
			r.mountChildren(c2, container, anchor, parent)
		default:
			r.mountChildren(c2, container, anchor, parent)
		}

	default:
		if prevShape.Has(ShapeTextChildren) {
			r.host.SetElementText(container, "")
		} else if prevShape.Has(ShapeArrayChildren) {
			r.unmountChildren(c1)
		}
	}
}

func hasKeys(list []*VNode) bool {
	for _, v := range list {
		if v.HasKey() {
			return true
		}
	}
	return false
}

// patchUnkeyedChildren matches children by position.
func (r *Renderer) patchUnkeyedChildren(c1, c2 []*VNode, container, anchor Node, parent *Instance) {
	common := min(len(c1), len(c2))
	for i := 0; i < common; i++ {
		r.patch(c1[i], c2[i], container, firstHostIn(c1, i+1, anchor), parent)
	}
	if len(c1) > len(c2) {
		for _, v := range c1[common:] {
			r.unmount(v, true)
		}
		return
	}
	for _, v := range c2[common:] {
		r.patch(nil, v, container, anchor, parent)
	}
}

// patchKeyedChildren reconciles two child lists by key with the minimum
// number of host moves.
//
// Common prefix and suffix are patched in place. If only one side has
// nodes left they are mounted or unmounted. Otherwise old nodes are matched
// to new ones by key; the matched nodes on a longest increasing subsequence
// of old positions stay put and every other node is moved or mounted,
// walking the new list back to front so each anchor is already placed.
// Keyless nodes in the unmatched middle are never matched.
func (r *Renderer) patchKeyedChildren(c1, c2 []*VNode, container, parentAnchor Node, parent *Instance) {
	i := 0
	e1, e2 := len(c1)-1, len(c2)-1

	// 1. common prefix
	for i <= e1 && i <= e2 {
		if !SameVNode(c1[i], c2[i]) {
			break
		}
		r.patch(c1[i], c2[i], container, firstHostIn(c1, i+1, parentAnchor), parent)
		i++
	}

	// 2. common suffix
	for i <= e1 && i <= e2 {
		if !SameVNode(c1[e1], c2[e2]) {
			break
		}
		r.patch(c1[e1], c2[e2], container, firstHostIn(c2, e2+1, parentAnchor), parent)
		e1--
		e2--
	}

	// 3. old side exhausted: mount the rest
	if i > e1 {
		if i <= e2 {
			anchor := firstHostIn(c2, e2+1, parentAnchor)
			for ; i <= e2; i++ {
				r.patch(nil, c2[i], container, anchor, parent)
			}
		}
		return
	}

	// 4. new side exhausted: unmount the rest
	if i > e2 {
		for ; i <= e1; i++ {
			r.unmount(c1[i], true)
		}
		return
	}

	// 5. unsorted middle
	s1, s2 := i, i
	keyToNewIndex := make(map[string]int, e2-s2+1)
	for j := s2; j <= e2; j++ {
		k := c2[j].Key
		if k == "" {
			continue
		}
		if _, dup := keyToNewIndex[k]; dup {
			r.logger.Warn("duplicate key among siblings", verrors.New("E304").WithField("key", k).LogAttrs()...)
		}
		keyToNewIndex[k] = j
	}

	toBePatched := e2 - s2 + 1
	patched := 0
	// newToOld[j] is 1 + the old index of new node s2+j, 0 if it has none.
	newToOld := make([]int, toBePatched)
	moved := false
	maxNewIndexSoFar := 0
	tailAnchor := firstHostIn(c2, e2+1, parentAnchor)

	for j := s1; j <= e1; j++ {
		prev := c1[j]
		if patched >= toBePatched {
			r.unmount(prev, true)
			continue
		}
		newIndex := -1
		if prev.Key != "" {
			if ni, ok := keyToNewIndex[prev.Key]; ok && newToOld[ni-s2] == 0 {
				newIndex = ni
			}
		}
		if newIndex < 0 || !SameVNode(prev, c2[newIndex]) {
			r.unmount(prev, true)
			continue
		}

		newToOld[newIndex-s2] = j + 1
		if newIndex >= maxNewIndexSoFar {
			maxNewIndexSoFar = newIndex
		} else {
			moved = true
		}
		r.patch(prev, c2[newIndex], container, firstHostIn(c1[:e1+1], j+1, tailAnchor), parent)
		patched++
	}

	var stable []int
	if moved {
		stable = LongestIncreasingSubsequence(newToOld)
	}
	k := len(stable) - 1
	for j := toBePatched - 1; j >= 0; j-- {
		next := c2[s2+j]
		anchor := firstHostIn(c2, s2+j+1, parentAnchor)
		switch {
		case newToOld[j] == 0:
			r.patch(nil, next, container, anchor, parent)
		case moved:
			if k < 0 || j != stable[k] {
				r.move(next, container, anchor)
			} else {
				k--
			}
		}
	}
}
