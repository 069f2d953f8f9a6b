package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/feedview/feedview/config"
	"github.com/feedview/feedview/feed"
	"github.com/feedview/feedview/tui"
	"github.com/feedview/feedview/viewed"
	"github.com/feedview/feedview/where"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
	bindViewFlags(runCmd.Flags())
}

// runCmd opens the feed in the terminal. It is also what the bare command does.
var runCmd = &cobra.Command{
	Use:     "run",
	Short:   "Open the feed in the terminal",
	Example: "  feedview run --kind timeline --filter own --autoplay on_mute",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runFeed(cmd)
	},
}

func runFeed(cmd *cobra.Command) {
	applyViewFlags(cmd)

	options, err := config.Load()
	handleErr(err)

	client, err := feed.NewHTTPClient(options.ActionURL, feed.WithItemCacheTTL(options.ItemCacheTTL))
	handleErr(err)

	var store *viewed.Store
	if options.AutoMarkViewed {
		store = viewed.NewStore(where.Viewed())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	handleErr(tui.Run(ctx, &tui.Options{
		Feed:   options,
		Client: client,
		Store:  store,
	}))
}
