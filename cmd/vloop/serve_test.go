package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vloop/internal/config"
	"github.com/vango-dev/vloop/pkg/protocol"
	"github.com/vango-dev/vloop/pkg/vtest"
)

func TestServeTicks(t *testing.T) {
	cfg := config.Default()
	cfg.Serve.Tick = "20ms"

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- newServer(cfg).Serve(ctx, ln) }()
	defer func() {
		cancel()
		assert.NoError(t, <-served)
	}()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	host := vtest.NewHost()
	root := host.NewContainer()
	replay := protocol.NewReplayer(host, root, nil)

	waiting := false
	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(vtest.Serialize(root), "tick 7") {
		require.True(t, time.Now().Before(deadline), "no tick 7 in %s", vtest.Serialize(root))
		conn.SetReadDeadline(deadline)
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		f, err := protocol.DecodeFrame(msg)
		require.NoError(t, err)
		require.Equal(t, protocol.FramePatches, f.Type)
		require.NoError(t, replay.ApplyFrame(f))
		waiting = waiting || strings.Contains(vtest.Serialize(root), "<p>waiting for the first tick</p>")
	}

	// The mount shows a note until the first tick arrives.
	assert.True(t, waiting)
	assert.NotContains(t, vtest.Serialize(root), "waiting")

	// Only the last five ticks are kept.
	items := root.Children[0].Children[1].Children
	assert.Len(t, items, recentTicks)
	assert.Equal(t, "tick 3", vtest.TextContent(items[0]))

	resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "vloop_frames_sent_total")
	assert.Contains(t, string(body), "go_goroutines")
}
