// Package protocol carries renderer output over a byte stream.
//
// A Host implements vdom.Host by recording each host operation as an Op on
// numeric node IDs. After every flush the session takes the collected ops as
// one PatchesFrame and writes it to the wire. On the other end a Replayer
// decodes the frame and applies the same operations to any local vdom.Host,
// so the remote tree mirrors the server's.
//
// # Wire Format
//
// Every message is a frame with a 6-byte header:
//
//	┌────────────┬───────────┬──────────────────────────────┐
//	│ Frame Type │ Flags     │ Payload Length               │
//	│ (1 byte)   │ (1 byte)  │ (4 bytes, big-endian)        │
//	└────────────┴───────────┴──────────────────────────────┘
//
// Frame types:
//
//   - FramePatches (0x01): server → client host operations
//   - FrameEvent (0x02): client → server handler invocation
//   - FrameError (0x03): coded error report
//
// # Encoding
//
//   - Varint: protobuf-style unsigned integers (counts, node IDs)
//   - ZigZag: signed integers as unsigned varints
//   - Length-prefixed: strings with a varint length
//
// A patches payload is [Seq varint][Count varint] followed by Count ops.
// Each op starts with [Kind byte][Node varint]; the rest depends on the kind:
//
//	CreateElement/Text/Comment, SetText, SetElementText: [Text string]
//	Insert:       [Parent varint][Anchor varint, 0 = append]
//	Remove:       nothing
//	PatchProp:    [Key string][Value]
//	SetStyle:     [Key string][Value string]
//	RemoveStyle:  [Key string]
//
// Ops are not individually length-prefixed, so a decoder rejects unknown
// kinds instead of skipping them.
//
// # Usage
//
//	host := protocol.NewHost()
//	r := vdom.NewRenderer(rt, host)
//	r.Render(app, host.Root())
//	if f := host.TakeFrame(); f != nil {
//	    conn.WriteMessage(websocket.BinaryMessage, f.Encode())
//	}
package protocol
