package cmd

import (
	"fmt"
	"os"

	"github.com/feedview/feedview/color"
	"github.com/feedview/feedview/style"
	"github.com/feedview/feedview/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// location is a directory or file the viewer keeps on disk.
type location struct {
	name string
	path func() string
	// internal locations are resolvable but not listed
	internal bool
}

var locations = []location{
	{"config", where.Config, false},
	{"logs", where.Logs, false},
	{"viewed", where.Viewed, false},
	{"cache", where.Cache, true},
	{"temp", where.Temp, true},
}

func findLocation(name string) (location, error) {
	l, ok := lo.Find(locations, func(l location) bool { return l.name == name })
	if !ok {
		return location{}, fmt.Errorf("unknown location %q", name)
	}
	return l, nil
}

func init() {
	rootCmd.AddCommand(whereCmd)
	whereCmd.SetOut(os.Stdout)
}

var whereCmd = &cobra.Command{
	Use:   "where [location]",
	Short: "Print where the viewer keeps its config, logs and viewed record",
	Args:  cobra.MaximumNArgs(1),
	ValidArgs: lo.FilterMap(locations, func(l location, _ int) (string, bool) {
		return l.name, !l.internal
	}),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 1 {
			l, err := findLocation(args[0])
			handleErr(err)
			cmd.Println(l.path())
			return
		}

		label := style.New().Bold(true).Foreground(color.HiPurple).Render
		for _, l := range locations {
			if !l.internal {
				cmd.Println(label(fmt.Sprintf("%-8s", l.name)), l.path())
			}
		}
	},
}
