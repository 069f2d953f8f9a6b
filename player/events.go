package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/feedview/feedview/log"
)

// observed lists the properties whose changes are pushed back by mpv.
var observed = []string{"pause", "mute"}

// watcher keeps a persistent connection subscribed to property changes. Observations are
// bound to the connection that requested them, so the subscription and the read loop
// share one socket.
type watcher struct {
	socketPath string
	onChange   func(name string, data any)

	mu        sync.Mutex
	conn      net.Conn
	listening bool
	stopped   chan struct{}
}

func newWatcher(socketPath string, onChange func(string, any)) *watcher {
	return &watcher{socketPath: socketPath, onChange: onChange}
}

// Start subscribes and begins reading notifications.
func (w *watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.listening {
		return nil
	}

	conn, err := net.Dial("unix", w.socketPath)
	if err != nil {
		return fmt.Errorf("watch connect: %w", err)
	}

	for id, name := range observed {
		if err := writeCommand(conn, []any{"observe_property", id + 1, name}); err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	w.conn = conn
	w.listening = true
	w.stopped = make(chan struct{})
	go w.readLoop(conn, w.stopped)

	log.Debugf("mpv watcher started on %s", w.socketPath)
	return nil
}

// Stop closes the connection and waits for the read loop to finish.
func (w *watcher) Stop() {
	w.mu.Lock()
	if !w.listening {
		w.mu.Unlock()
		return
	}
	w.listening = false
	conn, stopped := w.conn, w.stopped
	w.mu.Unlock()

	conn.Close()
	<-stopped
}

func (w *watcher) readLoop(conn net.Conn, stopped chan struct{}) {
	defer close(stopped)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var event ipcResponse
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			continue
		}

		if event.Event == "property-change" && event.Name != "" {
			w.onChange(event.Name, event.Data)
		}
	}
}
