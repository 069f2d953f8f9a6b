package cmd

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"

	"github.com/feedview/feedview/config"
	"github.com/feedview/feedview/feed"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(fetchCmd)
	bindViewFlags(fetchCmd.Flags())

	fetchCmd.Flags().Int("start", 0, "Offset of the first item")
	fetchCmd.Flags().Int("per-page", 0, "Number of items to request (defaults to the configured first page size)")
	fetchCmd.Flags().Int("item", 0, "Fetch a single item by id instead of a page")
	fetchCmd.Flags().IntSlice("mark", nil, "Mark the given item ids as viewed")
	fetchCmd.Flags().String("timeline", "", "Start the feed at this date")
	fetchCmd.Flags().String("blink", "", "Comma separated item ids to highlight")
	fetchCmd.Flags().Bool("schema", false, "Print the JSON schema of a page response and exit")
	fetchCmd.MarkFlagsMutuallyExclusive("item", "mark", "schema")

	fetchCmd.SetOut(os.Stdout)
}

// fetchCmd talks to the feed endpoint without the terminal interface.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Request a page, an item or a viewed mark from the feed endpoint and print the JSON",
	Example: "  feedview fetch --start 10 --per-page 5\n" +
		"  feedview fetch --item 42\n" +
		"  feedview fetch --schema",
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")

		if lo.Must(cmd.Flags().GetBool("schema")) {
			handleErr(encoder.Encode(feed.Schema()))
			return
		}

		applyViewFlags(cmd)
		options, err := config.Load()
		handleErr(err)

		client, err := feed.NewHTTPClient(options.ActionURL)
		handleErr(err)

		scope := feed.Scope{
			Name:     options.Name,
			View:     options.Kind,
			Type:     options.Type,
			OwnerID:  options.OwnerID,
			Filter:   options.Filter,
			Timeline: lo.Must(cmd.Flags().GetString("timeline")),
			Blink:    lo.Must(cmd.Flags().GetString("blink")),
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if options.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, options.Timeout)
			defer cancel()
		}

		if id := lo.Must(cmd.Flags().GetInt("item")); id != 0 {
			item, err := client.FetchItem(ctx, scope, id)
			handleErr(err)
			handleErr(encoder.Encode(item))
			return
		}

		if ids := lo.Must(cmd.Flags().GetIntSlice("mark")); len(ids) > 0 {
			marked, err := client.MarkViewed(ctx, scope, ids)
			handleErr(err)
			handleErr(encoder.Encode(marked))
			return
		}

		perPage := lo.Must(cmd.Flags().GetInt("per-page"))
		if perPage <= 0 {
			perPage = options.PerPageDefault
		}

		page, err := client.FetchPage(ctx, scope, lo.Must(cmd.Flags().GetInt("start")), perPage)
		handleErr(err)
		handleErr(encoder.Encode(page))
	},
}
