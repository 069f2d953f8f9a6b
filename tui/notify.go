package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/feedview/feedview/style"
)

// notifier shows a short lived message next to the help line.
type notifier struct {
	notification string
	serial       int
}

type notification string

type clearNotificationMsg struct {
	serial int
}

func notify(text string) tea.Cmd {
	return func() tea.Msg {
		return notification(text)
	}
}

func (n *notifier) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case notification:
		n.notification = string(msg)
		n.serial++
		serial := n.serial
		return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearNotificationMsg{serial: serial}
		})
	case clearNotificationMsg:
		// a newer message is still showing
		if msg.serial == n.serial {
			n.notification = ""
		}
	}
	return nil
}

func (n *notifier) View(content string) string {
	if n.notification == "" {
		return content
	}

	lines := strings.Split(content, "\n")
	lines[len(lines)-1] += "  " + style.Faint(n.notification)
	return strings.Join(lines, "\n")
}
