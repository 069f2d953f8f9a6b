package cmd

import (
	"os"

	"github.com/feedview/feedview/color"
	"github.com/feedview/feedview/config"
	"github.com/feedview/feedview/style"
	"github.com/feedview/feedview/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

// variable is an environment variable the viewer reads.
type variable struct {
	name, value string
}

// variables lists every setting override plus the config path override,
// sorted by name.
func variables() []variable {
	names := lo.Map(lo.Values(config.Default), func(f config.Field, _ int) string {
		return f.Env()
	})
	names = append(names, where.EnvConfigPath)
	slices.Sort(names)

	return lo.Map(names, func(name string, _ int) variable {
		return variable{name: name, value: os.Getenv(name)}
	})
}

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolP("set", "s", false, "Only list variables that are set")
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "List the environment variables that override settings",
	Run: func(cmd *cobra.Command, args []string) {
		setOnly := lo.Must(cmd.Flags().GetBool("set"))
		name := style.New().Bold(true).Foreground(color.Purple).Render

		for _, v := range variables() {
			switch {
			case v.value != "":
				cmd.Printf("%s=%s\n", name(v.name), style.Fg(color.Green)(v.value))
			case !setOnly:
				cmd.Printf("%s %s\n", name(v.name), style.Faint("(unset)"))
			}
		}
	},
}
