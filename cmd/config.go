package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/feedview/feedview/color"
	"github.com/feedview/feedview/config"
	"github.com/feedview/feedview/icon"
	"github.com/feedview/feedview/style"
	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// lookupField returns the registered field for key. Unknown keys get the
// closest registered key as a suggestion.
func lookupField(key string) (config.Field, error) {
	if field, ok := config.Default[key]; ok {
		return field, nil
	}

	closest := lo.MinBy(lo.Keys(config.Default), func(a, b string) bool {
		return levenshtein.Distance(key, a) < levenshtein.Distance(key, b)
	})

	return config.Field{}, fmt.Errorf(
		"unknown key %s, did you mean %s?",
		style.Fg(color.Red)(key),
		style.Fg(color.Yellow)(closest),
	)
}

func completeKeys(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return lo.Keys(config.Default), cobra.ShellCompDirectiveNoFileComp
}

// persist validates the options viper now holds and writes them to the
// config file. On failure the previous values are put back.
func persist(previous map[string]any) error {
	if _, err := config.Load(); err != nil {
		for k, v := range previous {
			viper.Set(k, v)
		}
		return err
	}

	if err := viper.WriteConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return viper.SafeWriteConfig()
		}
		return err
	}

	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInfoCmd, configSetCmd, configResetCmd)

	configInfoCmd.Flags().BoolP("json", "j", false, "Print the fields as json")
	configInfoCmd.SetOut(os.Stdout)

	configResetCmd.Flags().BoolP("all", "a", false, "Reset every key")
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change the viewer settings",
}

var configInfoCmd = &cobra.Command{
	Use:               "info [key...]",
	Short:             "Describe settings with their current and default values",
	ValidArgsFunction: completeKeys,
	Run: func(cmd *cobra.Command, args []string) {
		fields := lo.Values(config.Default)
		if len(args) > 0 {
			fields = lo.Map(args, func(key string, _ int) config.Field {
				field, err := lookupField(key)
				handleErr(err)
				return field
			})
		} else {
			sort.Slice(fields, func(i, j int) bool {
				return fields[i].Key < fields[j].Key
			})
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(fields))
			return
		}

		for i, field := range fields {
			if i > 0 {
				cmd.Println()
			}
			cmd.Println(field.Pretty())
		}
	},
}

var configSetCmd = &cobra.Command{
	Use:               "set <key> <value...>",
	Short:             "Change a setting and save it",
	Args:              cobra.MinimumNArgs(2),
	ValidArgsFunction: completeKeys,
	Run: func(cmd *cobra.Command, args []string) {
		field, err := lookupField(args[0])
		handleErr(err)

		value, err := parseValue(field, args[1:])
		handleErr(err)

		previous := map[string]any{field.Key: viper.Get(field.Key)}
		viper.Set(field.Key, value)
		handleErr(persist(previous))

		fmt.Printf(
			"%s %s = %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Fg(color.Purple)(field.Key),
			style.Fg(color.Yellow)(fmt.Sprint(value)),
		)
	},
}

var configResetCmd = &cobra.Command{
	Use:               "reset [key...]",
	Short:             "Put settings back to their defaults and save them",
	ValidArgsFunction: completeKeys,
	Run: func(cmd *cobra.Command, args []string) {
		keys := args
		if lo.Must(cmd.Flags().GetBool("all")) {
			keys = lo.Keys(config.Default)
		} else if len(keys) == 0 {
			handleErr(cmd.Help())
			return
		}

		previous := make(map[string]any, len(keys))
		for _, key := range keys {
			field, err := lookupField(key)
			handleErr(err)

			previous[key] = viper.Get(key)
			viper.Set(key, field.Value)
		}
		handleErr(persist(previous))

		fmt.Printf("%s %d setting(s) reset\n", style.Fg(color.Green)(icon.Get(icon.Success)), len(keys))
	},
}

// parseValue converts command line words to the type of the field default.
func parseValue(field config.Field, words []string) (any, error) {
	word := words[0]

	switch field.Value.(type) {
	case string:
		return word, nil
	case int:
		n, err := strconv.Atoi(word)
		if err != nil {
			return nil, fmt.Errorf("%s wants an integer, got %q", field.Key, word)
		}
		return n, nil
	case float64:
		f, err := strconv.ParseFloat(word, 64)
		if err != nil {
			return nil, fmt.Errorf("%s wants a number, got %q", field.Key, word)
		}
		return f, nil
	case bool:
		b, err := strconv.ParseBool(word)
		if err != nil {
			return nil, fmt.Errorf("%s wants true or false, got %q", field.Key, word)
		}
		return b, nil
	case []int:
		ints := make([]int, 0, len(words))
		for _, w := range words {
			n, err := strconv.Atoi(w)
			if err != nil {
				return nil, fmt.Errorf("%s wants integers, got %q", field.Key, w)
			}
			ints = append(ints, n)
		}
		return ints, nil
	default:
		return nil, fmt.Errorf("%s cannot be set from the command line", field.Key)
	}
}
