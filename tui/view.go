package tui

import (
	"fmt"
	"strings"

	"github.com/feedview/feedview/color"
	"github.com/feedview/feedview/icon"
	"github.com/feedview/feedview/style"
	"github.com/feedview/feedview/util"
	"github.com/feedview/feedview/view"
	"github.com/muesli/reflow/truncate"
	"github.com/samber/lo"
)

func (b *statefulBubble) View() string {
	lines := []string{b.viewTitle(), ""}
	lines = append(lines, b.viewBody()...)
	lines = append(lines, b.viewStatus())

	if b.keymap.prompting {
		lines = append(lines, b.inputC.View())
	}
	lines = append(lines, b.helpC.View(b.keymap))

	return paddingStyle.Render(b.notifier.View(strings.Join(lines, "\n")))
}

func (b *statefulBubble) viewTitle() string {
	scope := b.view.Scope()
	title := style.Title(util.Capitalize(b.options.Feed.Kind))
	detail := fmt.Sprintf("%s · %s", scope.Type, scope.Filter)
	if scope.Timeline != "" {
		detail += " · " + scope.Timeline
	}

	if b.view.Pagination().Busy {
		return title + " " + style.Faint(detail) + " " + b.spinnerC.View()
	}
	return title + " " + style.Faint(detail)
}

// viewBody draws the visible slice of the document with the playback gutter.
func (b *statefulBubble) viewBody() []string {
	height := max(b.bodyHeight(), 0)
	doc := b.view.Document()

	var all []string
	if doc.Len() == 0 {
		all = append(all, strings.Repeat(" ", gutter)+style.Faint(lo.Ternary(doc.Empty != "", doc.Empty, "Nothing here yet")))
	}
	for _, item := range doc.Items() {
		mark := b.gutterMark(item)
		for i, line := range item.Lines {
			prefix := strings.Repeat(" ", gutter)
			if i == 0 {
				prefix = mark
				line = style.Fg(color.Purple)(line)
			}
			all = append(all, prefix+line)
		}
		all = append(all, "")
	}

	top := int(b.view.Sample().ScrollTop)
	visible := lo.Slice(all, top, top+height)

	body := make([]string, 0, height)
	for _, line := range visible {
		body = append(body, truncate.String(line, uint(max(b.width, 0))))
	}
	for len(body) < height {
		body = append(body, "")
	}
	return body
}

// gutterMark is the icon shown next to an item header.
func (b *statefulBubble) gutterMark(item *view.Item) string {
	pad := func(s string) string {
		return s + strings.Repeat(" ", max(gutter-len([]rune(s)), 1))
	}

	registered := false
	for _, m := range item.Media {
		h, ok := b.view.Registry().Get(b.view.Key(m.Element)).Get()
		if !ok {
			continue
		}
		registered = true
		if !h.Playing() {
			continue
		}
		if h.Muted() {
			return pad(icon.Get(icon.Muted))
		}
		return pad(icon.Get(icon.Play))
	}

	switch {
	case registered:
		return pad(icon.Get(icon.Pause))
	case len(item.Media) > 0:
		return pad(icon.Get(icon.Video))
	}
	return strings.Repeat(" ", gutter)
}

func (b *statefulBubble) viewStatus() string {
	state := b.view.Pagination()
	doc := b.view.Document()

	parts := []string{style.Status(util.Quantify(doc.Len(), "item", "items"), "")}

	if active, ok := b.view.Arbiter().Active().Get(); ok {
		parts = append(parts, style.Status(icon.Get(icon.Play), active.Element))
	}

	switch {
	case state.Busy:
		parts = append(parts, style.Status(icon.Get(icon.Progress), "loading"))
	case state.Exhausted:
		parts = append(parts, style.Faint("end of feed"))
	case doc.LoadMore != "" && state.PreloadCount >= state.PreloadBudget:
		parts = append(parts, style.Status("l", doc.LoadMore))
	}

	if doc.Back != "" {
		parts = append(parts, style.Faint(doc.Back))
	}

	if pending := len(b.view.ViewedPending()); pending > 0 {
		parts = append(parts, style.Status(icon.Get(icon.Viewed), util.Quantify(pending, "unreported", "unreported")))
	}

	return strings.Join(parts, "  ")
}
