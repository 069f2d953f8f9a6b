package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/feedview/feedview/config"
	"github.com/feedview/feedview/constant"
	"github.com/feedview/feedview/log"
	"github.com/feedview/feedview/loop"
	"github.com/feedview/feedview/util"
	"github.com/feedview/feedview/view"
	"github.com/feedview/feedview/visibility"
	"github.com/samber/lo"
)

var paddingStyle = lipgloss.NewStyle().Padding(0, 1)

// chrome is the number of lines around the document: title, blank, status and help.
const chrome = 4

// gutter is the width of the column left of each line that shows the playback state.
const gutter = 3

// statefulBubble is the feed screen. Loop tasks are drained from Update, so the view is
// only ever touched from the bubbletea goroutine.
type statefulBubble struct {
	ctx    context.Context
	loop   *loop.Loop
	view   *view.View
	closed bool

	keymap   *keymap
	spinnerC spinner.Model
	helpC    help.Model
	inputC   textinput.Model
	notifier *notifier

	// notes are produced by loop callbacks and turned into notifications by Update
	notes []string

	filter        int
	width, height int

	options *Options
}

func newBubble(ctx context.Context, options *Options) (*statefulBubble, error) {
	l := loop.New()

	v, err := view.New(ctx, options.Feed, view.Deps{
		Scheduler: l,
		Client:    options.Client,
		// the host notifies on every scroll and resize, which is what edge triggered
		// observation needs
		Capabilities: visibility.Capabilities{
			Threshold: true,
			Frames:    loop.NewFrames(l, constant.FrameInterval),
		},
		Store: options.Store,
	})
	if err != nil {
		return nil, err
	}

	bubble := &statefulBubble{
		ctx:      ctx,
		loop:     l,
		view:     v,
		keymap:   newKeymap(),
		notifier: &notifier{},
		options:  options,
		filter:   max(lo.IndexOf(config.Filters, options.Feed.Filter), 0),
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	bubble.inputC = textinput.New()
	bubble.inputC.Placeholder = "YYYY-MM-DD"
	bubble.inputC.CharLimit = 10
	bubble.inputC.Prompt = "Jump to: "

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	return bubble, nil
}

// resize propagates terminal dimension changes to the view.
func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()

	b.width = width - x
	b.height = height - y
	b.helpC.Width = b.width
	b.inputC.Width = b.width

	b.view.OnResize(max(b.width-gutter, 1), max(b.bodyHeight(), 1))
}

func (b *statefulBubble) bodyHeight() int {
	return b.height - chrome
}

func (b *statefulBubble) note(text string) {
	b.notes = append(b.notes, text)
}

// close reports viewed items and stops every player. It is safe to call twice.
func (b *statefulBubble) close() {
	if b.closed {
		return
	}
	b.closed = true

	ctx, cancel := context.WithTimeout(context.WithoutCancel(b.ctx), 5*time.Second)
	defer cancel()

	if err := b.view.Close(ctx); err != nil {
		log.Warnf("close view: %v", err)
	}
}
