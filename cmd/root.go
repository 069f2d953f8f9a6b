// Package cmd implements the command-line interface for feedview.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/feedview/feedview/color"
	"github.com/feedview/feedview/config"
	"github.com/feedview/feedview/constant"
	"github.com/feedview/feedview/icon"
	"github.com/feedview/feedview/key"
	"github.com/feedview/feedview/log"
	"github.com/feedview/feedview/style"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	bindViewFlags(rootCmd.Flags())
}

// viewFlags are shared by the commands that open or fetch a view. They override the
// configured values for one run.
var viewFlags = []struct {
	name, short, key string
	allowed          []string
}{
	{"kind", "k", key.ViewKind, config.Kinds},
	{"type", "t", key.ViewType, nil},
	{"filter", "f", key.ViewFilter, config.Filters},
	{"name", "n", key.ViewName, nil},
	{"autoplay", "a", key.PlayerAutoplay, config.AutoplayModes},
	{"player", "p", key.Player, config.Players},
	{"url", "u", key.FeedActionURL, nil},
}

func bindViewFlags(flags *pflag.FlagSet) {
	for _, f := range viewFlags {
		usage := config.Default[f.key].Description
		if i := strings.IndexByte(usage, '\n'); i >= 0 {
			usage = usage[:i]
		}
		flags.StringP(f.name, f.short, "", usage)
	}
}

// applyViewFlags copies the flags the user set into viper.
func applyViewFlags(cmd *cobra.Command) {
	for _, f := range viewFlags {
		if !cmd.Flags().Changed(f.name) {
			continue
		}

		value := lo.Must(cmd.Flags().GetString(f.name))
		viper.Set(f.key, value)
	}
}

// rootCmd defines the entry point for the feedview application.
var rootCmd = &cobra.Command{
	Use:   constant.Feedview,
	Short: "A terminal viewer for paginated timeline feeds with autoplaying videos",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - A terminal viewer for paginated timeline feeds with autoplaying videos"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		runFeed(cmd)
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
