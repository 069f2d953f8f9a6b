package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/feedview/feedview/constant"
	"github.com/muesli/reflow/wordwrap"
	"github.com/samber/lo"
)

// Media is a player element found inside an item.
type Media struct {
	Element string
	Source  string
}

// Item is one feed entry laid out as a block of lines.
type Item struct {
	ID    int
	Text  string
	Media []Media

	Top   float64
	Lines []string
}

// Height is the number of lines the item occupies, including its separator.
func (i *Item) Height() float64 {
	return float64(len(i.Lines) + 1)
}

// Bottom is the lower edge of the item.
func (i *Item) Bottom() float64 {
	return i.Top + i.Height()
}

// Parse extracts the items of an HTML fragment. Elements without a numeric item id are
// skipped.
func Parse(fragment string) ([]*Item, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("parse items: %w", err)
	}

	var items []*Item
	doc.Find("." + constant.ClassItem).Each(func(_ int, s *goquery.Selection) {
		raw, _ := s.Attr("id")
		id, err := strconv.Atoi(strings.TrimPrefix(raw, constant.ItemIDPrefix))
		if err != nil {
			return
		}

		item := &Item{ID: id, Text: strings.Join(strings.Fields(s.Text()), " ")}
		s.Find(constant.MediaSelector).Each(func(_ int, m *goquery.Selection) {
			element, _ := m.Attr("id")
			src, ok := m.Attr("src")
			if !ok {
				src, _ = m.Find("source[src]").First().Attr("src")
			}
			item.Media = append(item.Media, Media{Element: element, Source: src})
		})

		items = append(items, item)
	})

	return items, nil
}

// MarkupText flattens a marker fragment (load more, back, empty) to plain text.
func MarkupText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// Document is the vertical list of items the viewport scrolls over.
type Document struct {
	width int
	items []*Item

	LoadMore string
	Back     string
	Empty    string
}

// NewDocument creates an empty document laid out at width columns.
func NewDocument(width int) *Document {
	return &Document{width: max(width, 10)}
}

// Items returns the items in order.
func (d *Document) Items() []*Item {
	return d.items
}

// Len returns the number of items.
func (d *Document) Len() int {
	return len(d.items)
}

// Height returns the total height.
func (d *Document) Height() float64 {
	if len(d.items) == 0 {
		return 0
	}
	return d.items[len(d.items)-1].Bottom()
}

// ItemOffsets returns the top of every item.
func (d *Document) ItemOffsets() []float64 {
	return lo.Map(d.items, func(i *Item, _ int) float64 { return i.Top })
}

// Find returns the item with id.
func (d *Document) Find(id int) (*Item, bool) {
	return lo.Find(d.items, func(i *Item) bool { return i.ID == id })
}

// FindMedia returns the item holding the media element.
func (d *Document) FindMedia(element string) (*Item, Media, bool) {
	for _, item := range d.items {
		for _, m := range item.Media {
			if m.Element == element {
				return item, m, true
			}
		}
	}
	return nil, Media{}, false
}

// Append adds items after the existing ones. Items already present are replaced in place.
func (d *Document) Append(items []*Item) {
	for _, item := range items {
		if i := d.index(item.ID); i >= 0 {
			d.items[i] = item
			continue
		}
		d.items = append(d.items, item)
	}
	d.layout()
}

// Replace swaps every item.
func (d *Document) Replace(items []*Item) {
	d.items = nil
	d.Append(items)
}

// Remove deletes the item with id.
func (d *Document) Remove(id int) (*Item, bool) {
	i := d.index(id)
	if i < 0 {
		return nil, false
	}
	removed := d.items[i]
	d.items = append(d.items[:i], d.items[i+1:]...)
	d.layout()
	return removed, true
}

// Update replaces the item with the same id in place.
func (d *Document) Update(item *Item) (*Item, bool) {
	i := d.index(item.ID)
	if i < 0 {
		return nil, false
	}
	previous := d.items[i]
	d.items[i] = item
	d.layout()
	return previous, true
}

// Relayout wraps every item at a new width.
func (d *Document) Relayout(width int) {
	d.width = max(width, 10)
	d.layout()
}

func (d *Document) index(id int) int {
	_, i, ok := lo.FindIndexOf(d.items, func(i *Item) bool { return i.ID == id })
	if !ok {
		return -1
	}
	return i
}

func (d *Document) layout() {
	top := 0.0
	for _, item := range d.items {
		item.Top = top
		item.Lines = d.render(item)
		top = item.Bottom()
	}
}

func (d *Document) render(item *Item) []string {
	lines := []string{fmt.Sprintf("#%d", item.ID)}
	if item.Text != "" {
		lines = append(lines, strings.Split(wordwrap.String(item.Text, d.width), "\n")...)
	}
	for _, m := range item.Media {
		lines = append(lines, fmt.Sprintf("[video %s]", m.Element))
	}
	return lines
}
