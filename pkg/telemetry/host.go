package telemetry

import (
	"github.com/vango-dev/vloop/pkg/protocol"
	"github.com/vango-dev/vloop/pkg/vdom"
)

// InstrumentHost wraps h so every host call is counted in m under the
// matching protocol op name. If h implements vdom.Navigator, so does the
// result.
func InstrumentHost(h vdom.Host, m *Metrics) vdom.Host {
	ch := &countingHost{host: h, m: m}
	if nav, ok := h.(vdom.Navigator); ok {
		return &navCountingHost{countingHost: ch, nav: nav}
	}
	return ch
}

type countingHost struct {
	host vdom.Host
	m    *Metrics
}

func (h *countingHost) count(k protocol.OpKind) {
	h.m.RecordOp(k.String())
}

func (h *countingHost) CreateElement(tag string) vdom.Node {
	h.count(protocol.OpCreateElement)
	return h.host.CreateElement(tag)
}

func (h *countingHost) CreateText(text string) vdom.Node {
	h.count(protocol.OpCreateText)
	return h.host.CreateText(text)
}

func (h *countingHost) CreateComment(text string) vdom.Node {
	h.count(protocol.OpCreateComment)
	return h.host.CreateComment(text)
}

func (h *countingHost) SetText(node vdom.Node, text string) {
	h.count(protocol.OpSetText)
	h.host.SetText(node, text)
}

func (h *countingHost) SetElementText(el vdom.Node, text string) {
	h.count(protocol.OpSetElementText)
	h.host.SetElementText(el, text)
}

func (h *countingHost) Insert(child, parent, anchor vdom.Node) {
	h.count(protocol.OpInsert)
	h.host.Insert(child, parent, anchor)
}

func (h *countingHost) Remove(node vdom.Node) {
	h.count(protocol.OpRemove)
	h.host.Remove(node)
}

func (h *countingHost) PatchProp(el vdom.Node, key string, prev, next any) {
	h.count(protocol.OpPatchProp)
	h.host.PatchProp(el, key, prev, next)
}

type navCountingHost struct {
	*countingHost
	nav vdom.Navigator
}

func (h *navCountingHost) NextSibling(node vdom.Node) vdom.Node {
	return h.nav.NextSibling(node)
}
