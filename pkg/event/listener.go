// Package event receives space-change notifications on a unix socket.
//
// yabai has no push channel of its own, so the daemon listens on a
// socket and the user points a signal at it:
//
//	yabai -m signal --add event=space_changed \
//	    action='echo space_changed | nc -U "$XDG_RUNTIME_DIR/yabaitray.sock"'
package event

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"strings"

	"go.uber.org/zap"
)

// SpaceChanged is the only event the daemon reacts to.
const SpaceChanged = "space_changed"

type Listener struct {
	socketPath string
	handler    func(event string)
	log        *zap.SugaredLogger
}

func NewListener(socketPath string, handler func(event string), log *zap.SugaredLogger) *Listener {
	return &Listener{
		socketPath: socketPath,
		handler:    handler,
		log:        log,
	}
}

// Listen accepts connections until the context is cancelled. Each line
// received is one event name passed to the handler.
func (l *Listener) Listen(ctx context.Context) error {
	// a stale socket from a previous run would block the bind, but a
	// misconfigured path must not cost the user a file
	if info, err := os.Stat(l.socketPath); err == nil {
		if info.Mode()&os.ModeSocket == 0 {
			return fmt.Errorf("%s exists and is not a socket", l.socketPath)
		}
		_ = os.Remove(l.socketPath)
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "unix", l.socketPath)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", l.socketPath, err)
	}
	defer ln.Close()
	defer os.Remove(l.socketPath)

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("accept: %w", err)
		}

		go l.serve(conn)
	}
}

func (l *Listener) serve(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		ev := strings.TrimSpace(scanner.Text())
		if ev == "" {
			continue
		}

		l.log.Debugw("received event", "event", ev)
		l.handler(ev)
	}

	if err := scanner.Err(); err != nil {
		l.log.Warnw("read event connection", "error", err)
	}
}
