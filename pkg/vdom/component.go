package vdom

import (
	"fmt"
	"time"

	verrors "github.com/vango-dev/vloop/internal/errors"
	"github.com/vango-dev/vloop/pkg/reactive"
)

// Component renders a subtree. Render runs inside the instance's render
// effect: observed state it reads subscribes the instance, and a change
// schedules a re-render.
//
// Definitions are compared to decide whether a node is patched in place, so
// they should be pointers or other comparable values.
type Component interface {
	Render(inst *Instance) *VNode
}

// Setuper is implemented by components with per-instance state. The value
// returned by Setup is observed when it is a struct pointer or a map with
// string keys and exposed as Instance.State.
type Setuper interface {
	Setup(inst *Instance) any
}

// Lifecycle hooks. A component implements the ones it needs.
type (
	Creator interface {
		Created(inst *Instance)
	}
	BeforeMounter interface {
		BeforeMount(inst *Instance)
	}
	Mounter interface {
		Mounted(inst *Instance)
	}
	BeforeUpdater interface {
		BeforeUpdate(inst *Instance)
	}
	Updater interface {
		Updated(inst *Instance)
	}
	Unmounter interface {
		Unmounted(inst *Instance)
	}
)

// Namer lets a component choose its name in logs and metrics.
type Namer interface {
	Name() string
}

// FuncComponent wraps a render function.
type FuncComponent struct {
	name   string
	render func(inst *Instance) *VNode
}

// Render implements Component.
func (f *FuncComponent) Render(inst *Instance) *VNode {
	return f.render(inst)
}

// Name implements Namer.
func (f *FuncComponent) Name() string {
	return f.name
}

// Func creates a component from a render function. Create it once and reuse
// the result: every call returns a distinct definition.
func Func(name string, render func(inst *Instance) *VNode) *FuncComponent {
	return &FuncComponent{name: name, render: render}
}

// Instance is a mounted component.
type Instance struct {
	r      *Renderer
	def    Component
	name   string
	vnode  *VNode
	parent *Instance

	state *reactive.Object
	data  any
	scope *reactive.Scope

	effect      *reactive.Effect
	job         *reactive.Job
	mountedJob  *reactive.Job
	updatedJob  *reactive.Job
	queued      bool
	container   Node
	subTree     *VNode
	next        *VNode
	isMounted   bool
	isUnmounted bool
	renders     int
}

// Name returns the component name.
func (inst *Instance) Name() string {
	return inst.name
}

// Props returns the props of the current vnode.
func (inst *Instance) Props() Props {
	return inst.vnode.Props
}

// Children returns the slot content passed to the component.
func (inst *Instance) Children() []*VNode {
	return inst.vnode.Children
}

// State returns the observed state returned by Setup, or nil.
func (inst *Instance) State() *reactive.Object {
	return inst.state
}

// Data returns the raw value returned by Setup.
func (inst *Instance) Data() any {
	return inst.data
}

// Runtime returns the runtime the instance renders on.
func (inst *Instance) Runtime() *reactive.Runtime {
	return inst.r.rt
}

// Scope returns the scope owning the instance's effects.
func (inst *Instance) Scope() *reactive.Scope {
	return inst.scope
}

// Parent returns the enclosing component instance, or nil at the root.
func (inst *Instance) Parent() *Instance {
	return inst.parent
}

// IsMounted reports whether the first render has been mounted.
func (inst *Instance) IsMounted() bool {
	return inst.isMounted && !inst.isUnmounted
}

// Renders returns the number of successful renders.
func (inst *Instance) Renders() int {
	return inst.renders
}

// SubTree returns the last mounted render output.
func (inst *Instance) SubTree() *VNode {
	return inst.subTree
}

func componentName(c Component) string {
	if n, ok := c.(Namer); ok && n.Name() != "" {
		return n.Name()
	}
	return fmt.Sprintf("%T", c)
}

func (r *Renderer) processComponent(n1, n2 *VNode, container, anchor Node, parent *Instance) {
	if n1 == nil {
		r.mountComponent(n2, container, anchor, parent)
		return
	}
	r.updateComponent(n1, n2)
}

func (r *Renderer) mountComponent(v *VNode, container, anchor Node, parent *Instance) {
	inst := &Instance{
		r:         r,
		def:       v.Comp,
		name:      componentName(v.Comp),
		vnode:     v,
		parent:    parent,
		container: container,
	}
	v.Instance = inst

	var parentScope *reactive.Scope
	if parent != nil {
		parentScope = parent.scope
	}
	inst.scope = reactive.NewScope(r.rt, parentScope)

	inst.scope.Run(func() {
		if s, ok := inst.def.(Setuper); ok {
			inst.callHook("setup", func() {
				inst.data = s.Setup(inst)
			})
			if inst.data != nil {
				if o, err := reactive.Observe(r.rt, inst.data); err == nil {
					inst.state = o
				}
			}
		}
		if c, ok := inst.def.(Creator); ok {
			inst.callHook("created", func() { c.Created(inst) })
		}
	})

	inst.job = reactive.NewJob("render:"+inst.name, func() {
		if !inst.queued {
			return
		}
		inst.queued = false
		inst.effect.Run()
	})
	inst.scope.Run(func() {
		inst.effect = reactive.NewEffect(r.rt, func() {
			inst.update(anchor)
		}, reactive.Lazy(), reactive.Named(inst.name), reactive.WithScheduler(func(*reactive.Effect) {
			inst.queued = true
			r.rt.Scheduler().Enqueue(inst.job)
		}))
	})
	inst.effect.Run()
}

// updateComponent hands n2 to the instance of n1. The instance re-renders
// now if its props or slot content changed.
func (r *Renderer) updateComponent(n1, n2 *VNode) {
	inst := n1.Instance
	n2.Instance = inst
	if inst == nil {
		return
	}
	if PropsEqual(n1.Props, n2.Props) && len(n1.Children) == 0 && len(n2.Children) == 0 {
		inst.vnode = n2
		return
	}
	inst.next = n2
	inst.queued = false
	inst.effect.Run()
}

// update is the render effect body. The first run mounts; later runs
// re-render and patch the previous subtree.
func (inst *Instance) update(mountAnchor Node) {
	r := inst.r
	if inst.isUnmounted {
		return
	}

	if !inst.isMounted {
		if c, ok := inst.def.(BeforeMounter); ok {
			inst.callHook("beforeMount", func() { c.BeforeMount(inst) })
		}
		tree, err := inst.render()
		if err != nil {
			tree = Comment("")
		}
		r.patch(nil, tree, inst.container, mountAnchor, inst)
		inst.subTree = tree
		inst.isMounted = true
		if _, ok := inst.def.(Mounter); ok {
			r.rt.Scheduler().EnqueuePost(inst.hookJob(&inst.mountedJob, "mounted", func() {
				inst.def.(Mounter).Mounted(inst)
			}))
		}
		return
	}

	if next := inst.next; next != nil {
		inst.next = nil
		inst.vnode = next
	}
	if c, ok := inst.def.(BeforeUpdater); ok {
		inst.callHook("beforeUpdate", func() { c.BeforeUpdate(inst) })
	}
	tree, err := inst.render()
	if err != nil {
		return
	}
	prev := inst.subTree
	anchor := r.nextHostNode(prev, nil)
	inst.subTree = tree
	r.patch(prev, tree, inst.container, anchor, inst)
	if _, ok := inst.def.(Updater); ok {
		r.rt.Scheduler().EnqueuePost(inst.hookJob(&inst.updatedJob, "updated", func() {
			inst.def.(Updater).Updated(inst)
		}))
	}
}

// render calls the component's Render, turning a panic into an error. A
// nil tree or an empty fragment renders as an empty comment so the
// instance always owns a host node.
func (inst *Instance) render() (tree *VNode, err error) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			le := verrors.FromPanic(rec, "E301").WithField("component", inst.name)
			inst.r.logger.Error("component render failed", le.LogAttrs()...)
			tree, err = nil, le
		}
		if inst.r.observer != nil {
			inst.r.observer.OnRender(inst.name, time.Since(start), err)
		}
	}()

	tree = inst.def.Render(inst)
	if tree == nil || (tree.Kind == KindFragment && len(tree.Children) == 0) {
		tree = Comment("")
	}
	inst.renders++
	return tree, nil
}

// hookJob returns the instance's job for a post-flush hook, creating it on
// first use so repeated updates in one flush call the hook once.
func (inst *Instance) hookJob(slot **reactive.Job, hook string, fn func()) *reactive.Job {
	if *slot == nil {
		*slot = reactive.NewJob(hook+":"+inst.name, func() {
			if inst.isUnmounted {
				return
			}
			inst.callHook(hook, fn)
		})
	}
	return *slot
}

// callHook runs a lifecycle hook, logging a panic instead of propagating it.
func (inst *Instance) callHook(hook string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			le := verrors.FromPanic(rec, "E302").
				WithField("component", inst.name).
				WithField("hook", hook)
			inst.r.logger.Error("lifecycle hook panicked", le.LogAttrs()...)
		}
	}()
	fn()
}

// unmount stops the render effect, tears down the subtree and disposes the
// instance scope. The Unmounted hook runs after the current flush.
func (inst *Instance) unmount(doRemove bool) {
	if inst.isUnmounted {
		return
	}
	r := inst.r
	inst.effect.Stop()
	inst.queued = false
	r.unmount(inst.subTree, doRemove)
	inst.scope.Dispose()
	inst.isUnmounted = true

	if u, ok := inst.def.(Unmounter); ok {
		r.rt.Scheduler().EnqueuePost(reactive.NewJob("unmounted:"+inst.name, func() {
			inst.callHook("unmounted", func() { u.Unmounted(inst) })
		}))
	}
}
