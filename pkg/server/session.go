package server

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	verrors "github.com/vango-dev/vloop/internal/errors"
	"github.com/vango-dev/vloop/pkg/protocol"
	"github.com/vango-dev/vloop/pkg/reactive"
	"github.com/vango-dev/vloop/pkg/telemetry"
	"github.com/vango-dev/vloop/pkg/vdom"
)

// App builds the root tree of a session. It runs on the session loop. ctx
// is cancelled when the session closes; goroutines started by the app
// should stop then and hand state changes to the loop with Session.Post.
type App func(ctx context.Context, s *Session) *vdom.VNode

// Session is one WebSocket connection with its own runtime, renderer and
// protocol host. Every state change runs on the session loop; after each
// loop task the collected host ops are sent as one patches frame.
type Session struct {
	ID        string
	CreatedAt time.Time

	conn    *websocket.Conn
	writeMu sync.Mutex
	config  *SessionConfig
	logger  *slog.Logger
	metrics *telemetry.Metrics

	rt       *reactive.Runtime
	loop     *reactive.Loop
	host     *protocol.Host
	renderer *vdom.Renderer

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	framesSent atomic.Uint64
	eventsRecv atomic.Uint64
}

func newSession(parent context.Context, id string, conn *websocket.Conn, config *SessionConfig, metrics *telemetry.Metrics, tracer *telemetry.Tracer, logger *slog.Logger) *Session {
	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		conn:      conn,
		config:    config,
		logger:    logger.With("session_id", id),
		metrics:   metrics,
		host:      protocol.NewHost(),
	}
	s.ctx, s.cancel = context.WithCancel(parent)

	var observers []telemetry.Observer
	if metrics != nil {
		observers = append(observers, metrics)
	}
	if tracer != nil {
		observers = append(observers, tracer)
	}
	obs := telemetry.Multi(observers...)

	s.rt = reactive.NewRuntime(
		reactive.WithLogger(s.logger.With("component", "reactive")),
		reactive.WithObserver(obs),
		reactive.WithFlushLimit(config.FlushLimit),
	)

	var host vdom.Host = s.host
	if metrics != nil {
		host = telemetry.InstrumentHost(host, metrics)
	}
	s.renderer = vdom.NewRenderer(s.rt, host,
		vdom.WithLogger(s.logger.With("component", "renderer")),
		vdom.WithRenderObserver(obs),
	)

	s.loop = reactive.NewLoop(s.rt, config.MaxEventQueue)
	s.loop.AfterTask(s.sendPending)
	return s
}

// Runtime returns the session's runtime. Use it only from loop tasks.
func (s *Session) Runtime() *reactive.Runtime {
	return s.rt
}

// Host returns the session's protocol host.
func (s *Session) Host() *protocol.Host {
	return s.host
}

// Context is cancelled when the session closes.
func (s *Session) Context() context.Context {
	return s.ctx
}

// FramesSent returns the number of patches frames written.
func (s *Session) FramesSent() uint64 {
	return s.framesSent.Load()
}

// Post runs fn on the session loop. The patches it causes are sent after
// it returns.
func (s *Session) Post(fn func()) error {
	return s.loop.Post(s.ctx, fn)
}

// Serve mounts app and runs the session until the connection drops or ctx
// is cancelled. The tree is unmounted before Serve returns.
func (s *Session) Serve(ctx context.Context, app App) error {
	defer s.Close()
	stop := context.AfterFunc(ctx, s.Close)
	defer stop()

	loopDone := make(chan error, 1)
	go func() { loopDone <- s.loop.Run(s.ctx) }()

	if err := s.Post(func() {
		s.renderer.Render(app(s.ctx, s), s.host.Root())
	}); err != nil {
		return err
	}

	go s.heartbeat()
	s.readLoop()

	s.Close()
	err := <-loopDone
	// The loop has stopped, so the tree can be torn down from here.
	s.renderer.Render(nil, s.host.Root())
	if err == context.Canceled {
		err = nil
	}
	return err
}

// readLoop reads frames until the connection fails. Events are posted to
// the loop and dispatched there.
func (s *Session) readLoop() {
	s.conn.SetReadLimit(s.config.MaxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	})

	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			s.reportError(verrors.FromError(err, "E401"))
			continue
		}
		if frame.Type != protocol.FrameEvent {
			s.reportError(verrors.New("E401").
				WithDetail("unexpected " + frame.Type.String() + " frame from client"))
			continue
		}
		ev, err := protocol.DecodeEvent(frame.Payload)
		if err != nil {
			s.reportError(verrors.FromError(err, "E401"))
			continue
		}
		s.eventsRecv.Add(1)
		if err := s.Post(func() {
			if err := s.host.Dispatch(ev); err != nil {
				s.reportError(err)
			}
		}); err != nil {
			return
		}
	}
}

// heartbeat pings the client until the session closes.
func (s *Session) heartbeat() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			deadline := time.Now().Add(s.config.WriteTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.logger.Debug("ping failed", "error", err)
				s.Close()
				return
			}
		case <-s.ctx.Done():
			return
		}
	}
}

// sendPending writes the ops collected since the last frame. It runs on
// the loop after every task.
func (s *Session) sendPending() {
	frame := s.host.TakeFrame()
	if frame == nil {
		return
	}
	if err := s.write(frame); err != nil {
		s.logger.Error("write error", "error", err)
		s.Close()
		return
	}
	s.framesSent.Add(1)
	if s.metrics != nil {
		s.metrics.RecordFrame()
	}
}

// reportError logs err and sends it to the client as a non-fatal error
// frame.
func (s *Session) reportError(err error) {
	em := protocol.NewErrorMessage(err, false)
	s.logger.Warn("session error", "code", em.Code, "error", err)
	if s.metrics != nil {
		s.metrics.RecordError(err)
	}
	if werr := s.write(protocol.NewFrame(protocol.FrameError, protocol.EncodeErrorMessage(em))); werr != nil {
		s.logger.Debug("error frame not sent", "error", werr)
	}
}

func (s *Session) write(f *protocol.Frame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	return s.conn.WriteMessage(websocket.BinaryMessage, f.Encode())
}

// Close stops the loop and closes the connection. It is idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.loop.Close()
		s.conn.Close()
	})
}
