package policy

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// ErrTransportClosed is returned once a transport has been closed or its
// peer went away
var ErrTransportClosed = errors.New("transport closed")

// Transport carries whole messages to and from an external decision maker
type Transport interface {
	Send(ctx context.Context, msg []byte) error
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// inbox turns a blocking read function into a channel so receives can be
// abandoned when a context ends
type inbox struct {
	msgs chan []byte
	done chan struct{}
	err  error // set before msgs is closed
	once sync.Once
}

func newInbox(read func() ([]byte, error)) *inbox {
	in := &inbox{msgs: make(chan []byte), done: make(chan struct{})}
	go func() {
		defer close(in.msgs)
		for {
			msg, err := read()
			if err != nil {
				in.err = err
				return
			}
			select {
			case in.msgs <- msg:
			case <-in.done:
				return
			}
		}
	}()
	return in
}

func (in *inbox) receive(ctx context.Context) ([]byte, error) {
	select {
	case msg, ok := <-in.msgs:
		if !ok {
			if in.err != nil && !errors.Is(in.err, io.EOF) {
				return nil, fmt.Errorf("%w: %w", ErrTransportClosed, in.err)
			}
			return nil, ErrTransportClosed
		}
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (in *inbox) stop() {
	in.once.Do(func() { close(in.done) })
}

// StreamTransport exchanges newline-delimited messages over a byte stream
type StreamTransport struct {
	mu     sync.Mutex
	w      io.Writer
	inbox  *inbox
	closer func() error
}

// NewStreamTransport creates a transport writing to w and reading lines from r
func NewStreamTransport(r io.Reader, w io.Writer) *StreamTransport {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	read := func() ([]byte, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		line := scanner.Bytes()
		msg := make([]byte, len(line))
		copy(msg, line)
		return msg, nil
	}
	return &StreamTransport{w: w, inbox: newInbox(read)}
}

func (t *StreamTransport) Send(_ context.Context, msg []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	line := make([]byte, 0, len(msg)+1)
	line = append(append(line, msg...), '\n')
	if _, err := t.w.Write(line); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	return nil
}

func (t *StreamTransport) Receive(ctx context.Context) ([]byte, error) {
	return t.inbox.receive(ctx)
}

func (t *StreamTransport) Close() error {
	t.inbox.stop()
	if t.closer != nil {
		return t.closer()
	}
	return nil
}

// ProcessGracePeriod is how long a policy process may keep running after
// its stdin is closed before it is killed
const ProcessGracePeriod = time.Second

// StartProcess runs command through bash and talks to it over its stdin
// and stdout. Stderr is forwarded to the logger. Closing the transport
// closes stdin and waits for the process to exit, killing it after
// ProcessGracePeriod.
func StartProcess(ctx context.Context, command string, logger *log.Logger) (*StreamTransport, error) {
	cmd := exec.CommandContext(ctx, "bash", "-c", command)
	// children left behind by a killed shell may hold the pipes open
	cmd.WaitDelay = ProcessGracePeriod

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %q: %w", command, err)
	}
	logger = logger.With("pid", cmd.Process.Pid)
	logger.Debug("Started policy process", "command", command)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			logger.Debug("policy stderr", "line", scanner.Text())
		}
	}()

	done := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		wg.Wait()
		done <- err
	}()

	t := NewStreamTransport(stdout, stdin)
	t.closer = func() error {
		stdin.Close()

		select {
		case err := <-done:
			logger.Debug("Policy process exited", "error", err)
			if err != nil && ctx.Err() == nil {
				return fmt.Errorf("policy process: %w", err)
			}
			return nil
		case <-time.After(ProcessGracePeriod):
		}

		logger.Warn("Policy process still running after end of input, killing it")
		if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("killing policy process: %w", err)
		}
		<-done
		return nil
	}
	return t, nil
}

// WebSocketTransport exchanges text frames over a websocket connection
type WebSocketTransport struct {
	mu    sync.Mutex
	conn  *websocket.Conn
	inbox *inbox
}

// NewWebSocketTransport wraps an established connection
func NewWebSocketTransport(conn *websocket.Conn) *WebSocketTransport {
	read := func() ([]byte, error) {
		_, msg, err := conn.ReadMessage()
		return msg, err
	}
	return &WebSocketTransport{conn: conn, inbox: newInbox(read)}
}

// DialWebSocket connects to a websocket decision service
func DialWebSocket(ctx context.Context, url string) (*WebSocketTransport, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}
	return NewWebSocketTransport(conn), nil
}

func (t *WebSocketTransport) Send(ctx context.Context, msg []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		_ = t.conn.SetWriteDeadline(deadline)
	} else {
		_ = t.conn.SetWriteDeadline(time.Time{})
	}
	if err := t.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	return nil
}

func (t *WebSocketTransport) Receive(ctx context.Context) ([]byte, error) {
	return t.inbox.receive(ctx)
}

func (t *WebSocketTransport) Close() error {
	t.inbox.stop()

	t.mu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game over")
	_ = t.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	t.mu.Unlock()

	return t.conn.Close()
}
