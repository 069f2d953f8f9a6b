// Package tui provides the terminal host of a feed view.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/feedview/feedview/config"
	"github.com/feedview/feedview/feed"
	"github.com/feedview/feedview/viewed"
)

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	Feed   *config.Options
	Client feed.Client
	// Store remembers acknowledged viewed items; optional.
	Store *viewed.Store
}

// Run opens the feed and blocks until the user quits.
func Run(ctx context.Context, options *Options) error {
	bubble, err := newBubble(ctx, options)
	if err != nil {
		return err
	}
	defer bubble.close()

	_, err = tea.NewProgram(bubble, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
