package vdom

import (
	"log/slog"
	"time"

	"github.com/vango-dev/vloop/pkg/reactive"
)

// RenderObserver receives one call per component render.
type RenderObserver interface {
	OnRender(component string, d time.Duration, err error)
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithLogger sets the renderer logger.
func WithLogger(l *slog.Logger) RendererOption {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRenderObserver installs a RenderObserver.
func WithRenderObserver(o RenderObserver) RendererOption {
	return func(r *Renderer) {
		r.observer = o
	}
}

// Renderer reconciles VNode trees against a Host.
//
// Component re-renders are scheduled on the Runtime's scheduler, so a
// Renderer is bound to one Runtime and must be driven from its goroutine.
type Renderer struct {
	rt       *reactive.Runtime
	host     Host
	nav      Navigator
	logger   *slog.Logger
	observer RenderObserver

	// roots remembers the last tree rendered into each container.
	roots map[Node]*VNode
}

// NewRenderer creates a renderer for host.
func NewRenderer(rt *reactive.Runtime, host Host, opts ...RendererOption) *Renderer {
	r := &Renderer{
		rt:     rt,
		host:   host,
		logger: slog.Default().With("component", "renderer"),
		roots:  make(map[Node]*VNode),
	}
	r.nav, _ = host.(Navigator)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Runtime returns the renderer's runtime.
func (r *Renderer) Runtime() *reactive.Runtime {
	return r.rt
}

// Host returns the renderer's host.
func (r *Renderer) Host() Host {
	return r.host
}

// Render makes container show v, patching against whatever was rendered
// there before. Render(nil, container) unmounts. Render is a checkpoint:
// jobs it queues, such as mounted hooks, have run when it returns.
func (r *Renderer) Render(v *VNode, container Node) {
	r.rt.Batch(func() {
		prev := r.roots[container]
		if v == nil {
			if prev != nil {
				r.unmount(prev, true)
				delete(r.roots, container)
			}
			return
		}
		r.patch(prev, v, container, nil, nil)
		r.roots[container] = v
	})
}

// Root returns the tree last rendered into container.
func (r *Renderer) Root(container Node) *VNode {
	return r.roots[container]
}

// Patch diffs n1 against n2 and applies the difference to the host. n1 may
// be nil to mount. anchor is the host node n2's content goes before, nil for
// the end of container.
func (r *Renderer) Patch(n1, n2 *VNode, container, anchor Node) {
	r.patch(n1, n2, container, anchor, nil)
}

// Unmount tears v down and removes its host nodes.
func (r *Renderer) Unmount(v *VNode) {
	r.unmount(v, true)
}

func (r *Renderer) patch(n1, n2 *VNode, container, anchor Node, parent *Instance) {
	if n1 == n2 {
		return
	}
	if n2 == nil {
		r.unmount(n1, true)
		return
	}
	if n1 != nil && !SameVNode(n1, n2) {
		r.unmount(n1, true)
		n1 = nil
	}

	switch n2.Kind {
	case KindText:
		r.processText(n1, n2, container, anchor)
	case KindComment:
		r.processComment(n1, n2, container, anchor)
	case KindElement:
		r.processElement(n1, n2, container, anchor, parent)
	case KindFragment:
		r.processFragment(n1, n2, container, anchor, parent)
	case KindComponent:
		r.processComponent(n1, n2, container, anchor, parent)
	default:
		r.logger.Warn("unknown node kind", "kind", n2.Kind)
	}
}

func (r *Renderer) processText(n1, n2 *VNode, container, anchor Node) {
	if n1 == nil {
		n2.El = r.host.CreateText(n2.Text)
		r.host.Insert(n2.El, container, anchor)
		return
	}
	n2.El = n1.El
	if n2.Text != n1.Text {
		r.host.SetText(n2.El, n2.Text)
	}
}

func (r *Renderer) processComment(n1, n2 *VNode, container, anchor Node) {
	if n1 == nil {
		n2.El = r.host.CreateComment(n2.Text)
		r.host.Insert(n2.El, container, anchor)
		return
	}
	n2.El = n1.El
	if n2.Text != n1.Text {
		r.host.SetText(n2.El, n2.Text)
	}
}

func (r *Renderer) processElement(n1, n2 *VNode, container, anchor Node, parent *Instance) {
	if n1 == nil {
		r.mountElement(n2, container, anchor, parent)
		return
	}
	el := n1.El
	n2.El = el
	r.patchChildren(n1, n2, el, nil, parent)
	r.patchProps(el, n1.Props, n2.Props)
}

func (r *Renderer) mountElement(v *VNode, container, anchor Node, parent *Instance) {
	el := r.host.CreateElement(v.Tag)
	v.El = el

	shape := v.shape()
	if shape.Has(ShapeTextChildren) {
		r.host.SetElementText(el, v.Text)
	} else if shape.Has(ShapeArrayChildren) {
		r.mountChildren(v.Children, el, nil, parent)
	}

	for _, p := range v.Props {
		if p.Value != nil {
			r.host.PatchProp(el, p.Key, nil, p.Value)
		}
	}
	r.host.Insert(el, container, anchor)
}

func (r *Renderer) processFragment(n1, n2 *VNode, container, anchor Node, parent *Instance) {
	if n1 == nil {
		r.mountChildren(n2.Children, container, anchor, parent)
		return
	}
	r.patchChildren(n1, n2, container, anchor, parent)
}

func (r *Renderer) mountChildren(children []*VNode, container, anchor Node, parent *Instance) {
	for _, c := range children {
		r.patch(nil, c, container, anchor, parent)
	}
}

// patchProps sets every changed or added prop and clears every prop that
// disappeared.
func (r *Renderer) patchProps(el Node, prev, next Props) {
	if len(prev) == 0 && len(next) == 0 {
		return
	}
	lookupPrev, lookupNext := prev.Get, next.Get
	if len(prev)+len(next) > 16 {
		pi, ni := prev.index(), next.index()
		lookupPrev = func(k string) (any, bool) { v, ok := pi[k]; return v, ok }
		lookupNext = func(k string) (any, bool) { v, ok := ni[k]; return v, ok }
	}

	for _, p := range next {
		old, _ := lookupPrev(p.Key)
		if !propEqual(old, p.Value) {
			r.host.PatchProp(el, p.Key, old, p.Value)
		}
	}
	for _, p := range prev {
		if _, ok := lookupNext(p.Key); !ok && p.Value != nil {
			r.host.PatchProp(el, p.Key, p.Value, nil)
		}
	}
}

// unmount tears v down. Only the topmost host nodes are removed: children
// of a removed element go with it.
func (r *Renderer) unmount(v *VNode, doRemove bool) {
	if v == nil {
		return
	}
	switch v.Kind {
	case KindComponent:
		if v.Instance != nil {
			v.Instance.unmount(doRemove)
		}
	case KindFragment:
		for _, c := range v.Children {
			r.unmount(c, doRemove)
		}
	case KindElement:
		if v.shape().Has(ShapeArrayChildren) {
			for _, c := range v.Children {
				r.unmount(c, false)
			}
		}
		if doRemove && v.El != nil {
			r.host.Remove(v.El)
		}
	default:
		if doRemove && v.El != nil {
			r.host.Remove(v.El)
		}
	}
}

func (r *Renderer) unmountChildren(children []*VNode) {
	for _, c := range children {
		r.unmount(c, true)
	}
}

// move re-inserts v's host nodes before anchor.
func (r *Renderer) move(v *VNode, container, anchor Node) {
	switch v.Kind {
	case KindComponent:
		if v.Instance != nil {
			r.move(v.Instance.subTree, container, anchor)
		}
	case KindFragment:
		for _, c := range v.Children {
			r.move(c, container, anchor)
		}
	default:
		r.host.Insert(v.El, container, anchor)
	}
}

// nextHostNode returns the host node following v's content, or fallback
// when the host cannot navigate.
func (r *Renderer) nextHostNode(v *VNode, fallback Node) Node {
	if r.nav == nil {
		return fallback
	}
	last := lastHostNode(v)
	if last == nil {
		return fallback
	}
	return r.nav.NextSibling(last)
}
