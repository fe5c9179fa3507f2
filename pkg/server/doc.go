// Package server streams a reactive component tree to WebSocket clients.
//
// Each connection gets a Session: a reactive.Runtime, a vdom.Renderer on a
// protocol.Host, and a reactive.Loop that serializes all work. Client
// event frames are posted to the loop and dispatched to the handler props
// they name. After every loop task the host ops collected during its flush
// go out as one patches frame; the first frame of a session carries
// protocol.FlagReset.
//
//	srv := server.New(func(ctx context.Context, s *server.Session) *vdom.VNode {
//	    return vdom.C(counter)
//	}, &server.ServerConfig{Address: ":3000"})
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Errors decoding or dispatching client frames are reported back as
// non-fatal error frames; the session keeps running.
package server
