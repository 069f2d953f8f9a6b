package player

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/feedview/feedview/constant"
	"github.com/feedview/feedview/log"
	"github.com/feedview/feedview/where"
)

// ErrClosed is returned by commands sent to a closed mpv player.
var ErrClosed = errors.New("player closed")

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	commandQueueSize  = 32
)

// MPV controls one mpv process over its JSON-IPC socket.
//
// Commands are queued and delivered by a dedicated goroutine, so Play, Pause, Mute and
// Unmute never block the caller on IPC. IsPlaying reports the requested state, corrected
// by pause notifications when the user toggles playback in the mpv window.
type MPV struct {
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{}
	queue      chan []any
	done       chan struct{}
	watcher    *watcher

	mu      sync.Mutex // protects socket writes
	state   sync.Mutex // protects the fields below
	playing bool
	muted   bool
	closed  bool
}

// MPVFactory spawns an idle, paused mpv process for the media a key points to.
// resolve maps the key to a URL or a local path.
func MPVFactory(resolve func(Key) (string, error)) Factory {
	return func(key Key) (Controller, error) {
		target, err := resolve(key)
		if err != nil {
			return nil, err
		}
		return StartMPV(target, key.String())
	}
}

// StartMPV launches mpv paused on target and attaches to its socket.
func StartMPV(target, title string) (*MPV, error) {
	safeTarget, err := sanitizeMediaTarget(target)
	if err != nil {
		return nil, fmt.Errorf("invalid media target: %w", err)
	}

	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return nil, fmt.Errorf("generate socket name: %w", err)
	}
	socketPath := filepath.Join(where.Temp(), fmt.Sprintf("%s-%x.sock", constant.Feedview, randomBytes))

	safeTitle := sanitizeTitle(title)
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", socketPath),
		fmt.Sprintf("--force-media-title=%s", safeTitle),
		fmt.Sprintf("--title=%s", safeTitle),
		"--force-window=yes",
		"--idle=yes",
		"--pause=yes",
		"--keep-open=yes",
		"--",
		safeTarget,
	}

	cmd := exec.Command("mpv", args...)
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start mpv: %w", err)
	}

	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	if err := waitForSocket(socketPath, exited); err != nil {
		select {
		case <-exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(cmd)
		}
		return nil, fmt.Errorf("mpv socket not ready: %w", err)
	}

	m := attach(socketPath)
	m.cmd = cmd
	m.exited = exited
	return m, nil
}

// AttachMPV controls an mpv instance that is already listening on socketPath.
func AttachMPV(socketPath string) *MPV {
	return attach(socketPath)
}

func attach(socketPath string) *MPV {
	m := &MPV{
		socketPath: socketPath,
		exited:     make(chan struct{}),
		queue:      make(chan []any, commandQueueSize),
		done:       make(chan struct{}),
	}

	go m.deliver()

	m.watcher = newWatcher(socketPath, m.onProperty)
	if err := m.watcher.Start(); err != nil {
		log.Warnf("mpv %s: property watch unavailable: %v", socketPath, err)
		m.watcher = nil
	}

	return m
}

func waitForSocket(socketPath string, exited <-chan struct{}) error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", socketPath, socketWaitRetries)
}

// deliver sends queued commands in order until the player is closed.
func (m *MPV) deliver() {
	defer close(m.done)

	for command := range m.queue {
		if _, err := m.sendCommand(command); err != nil {
			log.WithFields(log.Fields{"socket": m.socketPath, "command": command[1:]}).Warn(err)
		}
	}
}

func (m *MPV) enqueue(property string, value bool, apply func()) error {
	m.state.Lock()
	defer m.state.Unlock()

	if m.closed {
		return ErrClosed
	}

	select {
	case m.queue <- []any{"set_property", property, value}:
		apply()
		return nil
	default:
		return fmt.Errorf("mpv %s: command queue full", m.socketPath)
	}
}

// Play implements Controller.
func (m *MPV) Play() error {
	return m.enqueue("pause", false, func() { m.playing = true })
}

// Pause implements Controller.
func (m *MPV) Pause() error {
	return m.enqueue("pause", true, func() { m.playing = false })
}

// Mute implements Controller.
func (m *MPV) Mute() error {
	return m.enqueue("mute", true, func() { m.muted = true })
}

// Unmute implements Controller.
func (m *MPV) Unmute() error {
	return m.enqueue("mute", false, func() { m.muted = false })
}

// IsPlaying implements Controller.
func (m *MPV) IsPlaying() bool {
	m.state.Lock()
	defer m.state.Unlock()
	return m.playing
}

// IsMuted reports the last known mute state.
func (m *MPV) IsMuted() bool {
	m.state.Lock()
	defer m.state.Unlock()
	return m.muted
}

// Paused asks mpv directly whether playback is suspended.
func (m *MPV) Paused() (bool, error) {
	data, err := m.sendCommand([]any{"get_property", "pause"})
	if err != nil {
		return false, err
	}
	paused, ok := data.(bool)
	if !ok {
		return false, fmt.Errorf("property pause: expected bool, got %T", data)
	}
	return paused, nil
}

func (m *MPV) onProperty(name string, data any) {
	value, ok := data.(bool)
	if !ok {
		return
	}

	m.state.Lock()
	defer m.state.Unlock()

	switch name {
	case "pause":
		m.playing = !value
	case "mute":
		m.muted = value
	}
}

// Wait returns a channel that is closed when a spawned mpv process exits.
func (m *MPV) Wait() <-chan struct{} {
	return m.exited
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	return m.socketPath
}

// Close drains pending commands and shuts down a spawned mpv process.
func (m *MPV) Close() error {
	m.state.Lock()
	if m.closed {
		m.state.Unlock()
		return nil
	}
	m.closed = true
	close(m.queue)
	m.state.Unlock()

	<-m.done

	if m.watcher != nil {
		m.watcher.Stop()
	}

	if m.cmd == nil {
		return nil
	}

	_, _ = m.sendCommand([]any{"quit"})

	select {
	case <-m.exited:
	case <-time.After(3 * time.Second):
		_ = killProcess(m.cmd)
	}

	_ = os.Remove(m.socketPath)
	return nil
}

// sanitizeMediaTarget validates that a URL is safe to pass to mpv.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

func sanitizeTitle(title string) string {
	t := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title)
	return strings.TrimSpace(t)
}
