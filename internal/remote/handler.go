package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/arenaforbots/internal/controller"
	"github.com/lox/arenaforbots/internal/match"
)

// KindRemote is the registry kind for websocket controllers.
const KindRemote = "remote"

// Handler serves a local controller to remote arenas. Every connection gets
// its own controller from the factory.
type Handler struct {
	factory  func() (match.Controller, error)
	logger   *log.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a websocket handler around factory.
func NewHandler(factory func() (match.Controller, error), logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Handler{
		factory: factory,
		logger:  logger.WithPrefix("bot"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request and answers controller requests until the
// arena disconnects.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection", "error", err, "remote", r.RemoteAddr)
		return
	}
	defer conn.Close()

	ctrl, err := h.factory()
	if err != nil {
		h.logger.Error("Failed to build controller", "error", err)
		_ = conn.WriteJSON(Message{Type: MessageError, Error: err.Error()})
		return
	}

	logger := h.logger.With("controller", ctrl.Name(), "remote", r.RemoteAddr)
	logger.Info("Arena connected")

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Info("Arena disconnected")
			} else {
				logger.Warn("Connection closed", "error", err)
			}
			return
		}

		reply, ok := h.handle(ctrl, msg)
		if !ok {
			continue
		}
		if err := conn.WriteJSON(reply); err != nil {
			logger.Warn("Failed to write reply", "error", err)
			return
		}
	}
}

// handle answers a single request. Notifications produce no reply.
func (h *Handler) handle(ctrl match.Controller, msg Message) (Message, bool) {
	switch msg.Type {
	case MessageReset:
		if err := ctrl.Reset(); err != nil {
			return Message{Type: MessageError, ID: msg.ID, Error: err.Error()}, true
		}
		return Message{Type: MessageAck, ID: msg.ID}, true
	case MessageDecide:
		v, err := ctrl.Decide()
		if err != nil {
			return Message{Type: MessageError, ID: msg.ID, Error: err.Error()}, true
		}
		return Message{Type: MessageAction, ID: msg.ID, Value: v}, true
	case MessageDie:
		if reactor, ok := ctrl.(match.DeathReactor); ok {
			reactor.Die()
		}
		return Message{}, false
	case MessageWin:
		if reactor, ok := ctrl.(match.WinReactor); ok {
			reactor.Win()
		}
		return Message{}, false
	default:
		return Message{Type: MessageError, ID: msg.ID, Error: fmt.Sprintf("unknown message type %q", msg.Type)}, true
	}
}

// Register adds the remote kind to reg. Remote controllers are dialled when
// built and closed by whoever built them.
func Register(reg *controller.Registry, logger *log.Logger, clock quartz.Clock) error {
	return reg.Register(KindRemote, func(spec controller.Spec, _ *rand.Rand) (match.Controller, error) {
		if spec.URL == "" {
			return nil, fmt.Errorf("%w: url", controller.ErrMissingArgument)
		}
		timeout := spec.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		c, err := Dial(ctx, spec.URL, spec.Name,
			WithTimeout(timeout),
			WithClock(clock),
			WithLogger(logger),
		)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: dial after %v", ErrTimeout, timeout)
			}
			return nil, err
		}
		return c, nil
	})
}

// ListenAndServe serves factory at addr under /ws until ctx is done.
func ListenAndServe(ctx context.Context, addr string, factory func() (match.Controller, error), logger *log.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", NewHandler(factory, logger))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
