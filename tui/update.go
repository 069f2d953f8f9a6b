package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/feedview/feedview/arbiter"
	"github.com/feedview/feedview/config"
	"github.com/feedview/feedview/icon"
	"github.com/feedview/feedview/open"
	"github.com/feedview/feedview/view"
	"github.com/samber/lo"
)

// loopMsg tells Update that loop tasks are waiting.
type loopMsg struct{}

func (b *statefulBubble) waitLoop() tea.Cmd {
	ready := b.loop.Ready()
	return func() tea.Msg {
		<-ready
		return loopMsg{}
	}
}

// Init starts the view and the loop pump.
func (b *statefulBubble) Init() tea.Cmd {
	b.loop.Post(b.view.Start)
	return tea.Batch(b.waitLoop(), b.spinnerC.Tick)
}

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{b.notifier.Update(msg)}

	switch msg := msg.(type) {
	case loopMsg:
		b.loop.Drain()
		cmds = append(cmds, b.waitLoop())
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinnerC, cmd = b.spinnerC.Update(msg)
		cmds = append(cmds, cmd)
	case tea.KeyMsg:
		if key.Matches(msg, b.keymap.forceQuit) {
			b.close()
			return b, tea.Quit
		}

		if b.keymap.prompting {
			cmds = append(cmds, b.updatePrompt(msg))
		} else if cmd := b.updateFeed(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	// tasks posted by key handlers run right away
	b.loop.Drain()

	for _, text := range b.notes {
		cmds = append(cmds, notify(text))
	}
	b.notes = nil

	return b, tea.Batch(cmds...)
}

func (b *statefulBubble) updateFeed(msg tea.KeyMsg) tea.Cmd {
	page := float64(max(b.bodyHeight()-1, 1))

	switch {
	case key.Matches(msg, b.keymap.quit):
		b.close()
		return tea.Quit
	case key.Matches(msg, b.keymap.up):
		b.view.ScrollBy(-1)
	case key.Matches(msg, b.keymap.down):
		b.view.ScrollBy(1)
	case key.Matches(msg, b.keymap.pageUp):
		b.view.ScrollBy(-page)
	case key.Matches(msg, b.keymap.pageDown):
		b.view.ScrollBy(page)
	case key.Matches(msg, b.keymap.top):
		b.view.OnScroll(0)
	case key.Matches(msg, b.keymap.bottom):
		b.view.OnScroll(b.view.Document().Height())
	case key.Matches(msg, b.keymap.loadMore):
		if !b.view.LoadMore() {
			b.note("Nothing more to load")
		}
	case key.Matches(msg, b.keymap.filter):
		b.filter = (b.filter + 1) % len(config.Filters)
		b.view.ChangeFilter(config.Filters[b.filter])
		b.note("Filter: " + config.Filters[b.filter])
	case key.Matches(msg, b.keymap.timeline):
		b.keymap.prompting = true
		b.inputC.SetValue("")
		return b.inputC.Focus()
	case key.Matches(msg, b.keymap.reload):
		b.view.Reload()
	case key.Matches(msg, b.keymap.play):
		switch {
		case b.view.Arbiter().Policy() == arbiter.Off:
			b.note("Autoplay is off")
		case b.view.PlayVideos().IsAbsent():
			b.note("No video in view")
		}
	case key.Matches(msg, b.keymap.pause):
		b.view.PauseVideos()
	case key.Matches(msg, b.keymap.remove):
		if item, ok := b.view.ItemAt(0); ok {
			if err := b.view.RemoveItem(item.ID); err != nil {
				b.note(err.Error())
			}
		}
	case key.Matches(msg, b.keymap.refresh):
		if item, ok := b.view.ItemAt(0); ok {
			id := item.ID
			b.view.RefreshItem(b.ctx, id, func(err error) {
				if err != nil {
					b.note(fmt.Sprintf("Refresh #%d failed", id))
				}
			})
		}
	case key.Matches(msg, b.keymap.openURL):
		item, ok := b.view.ItemAt(0)
		if !ok {
			break
		}
		source, found := lo.Find(item.Media, func(m view.Media) bool { return m.Source != "" })
		if !found {
			b.note("No video to open")
			break
		}
		if err := open.Start(source.Source); err != nil {
			b.note(err.Error())
			break
		}
		b.note(icon.Get(icon.Link) + " " + source.Source)
	case key.Matches(msg, b.keymap.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
	}

	return nil
}

func (b *statefulBubble) updatePrompt(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, b.keymap.back):
		b.keymap.prompting = false
		b.inputC.Blur()
		return nil
	case key.Matches(msg, b.keymap.confirm):
		b.keymap.prompting = false
		b.inputC.Blur()
		date := b.inputC.Value()
		b.view.ChangeTimeline(date)
		b.note(lo.Ternary(date == "", "Timeline: latest", "Timeline: "+date))
		return nil
	}

	var cmd tea.Cmd
	b.inputC, cmd = b.inputC.Update(msg)
	return cmd
}
