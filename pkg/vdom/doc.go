// Package vdom provides the tree model and the reconciler.
//
// A VNode describes one version of a UI tree. The Renderer diffs the
// previous version against the next one and applies the difference to a
// Host through a small set of operations (create, insert, remove, set text,
// patch prop). Host handles are carried from old nodes to new ones so the
// new tree can be diffed next time.
//
// # Core Types
//
// VNode is a tagged variant of element, text, comment, fragment and
// component nodes. Props is an ordered prop list. Component renders a
// subtree and is re-rendered by its Instance when observed state it read
// changes.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Ul(Class("todos"),
//	    Range(items, func(it Item, _ int) *VNode {
//	        return Li(Key(it.ID), it.Title)
//	    }),
//	)
//
// # Reconciliation
//
// Sibling lists with keys are reconciled by key: matched nodes on a longest
// increasing subsequence of their old positions stay in place and only the
// others are moved, which is the minimum number of moves. Lists without any
// key are patched by position.
package vdom
