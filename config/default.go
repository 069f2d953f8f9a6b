// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/feedview/feedview/color"
	"github.com/feedview/feedview/constant"
	"github.com/feedview/feedview/key"
	"github.com/feedview/feedview/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Feedview + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float"
	case bool:
		return "bool"
	case []int:
		return "[]int"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.FeedActionURL, "http://localhost:8080/m/timeline/", "Base URL of the feed actions.\nget_posts/, get_post/ and mark_as_read/ are appended to it")
	register(key.FeedTimeout, int(constant.FetchTimeout.Seconds()), "Seconds before an in-flight page request is abandoned.\n0 disables the timeout")
	register(key.FeedPerPage, constant.PerPage, "Items requested per page after the first one")
	register(key.FeedPerPageDefault, constant.PerPageDefault, "Items in the first page")
	register(key.FeedItemCacheTTL, int(constant.ItemCacheTTL.Seconds()), "Seconds a single fetched item is reused before asking the server again")
	register(key.ViewObjName, "oTimelineView", "Object name the host page knows this view by")
	register(key.ViewName, "", "Block name sent with every request")
	register(key.ViewKind, "timeline", "View kind.\nAvailable options are: timeline, outline, item")
	register(key.ViewType, "public", "Feed type sent with every request (e.g. public, owner, feed)")
	register(key.ViewOwnerID, 0, "Owner profile id sent with every request")
	register(key.ViewFilter, "all", "Initial feed filter")
	register(key.AnimationEffect, "slide", "Animation effect used when new items appear")
	register(key.AnimationSpeed, "slow", "Animation speed used when new items appear")
	register(key.ScrollInfinite, true, "Load more items automatically while scrolling")
	register(key.ScrollAutoPreloads, constant.AutoPreloads, "Automatic page loads allowed before 'Load More' must be pressed")
	register(key.ScrollTrigger, "item", "When to preload the next page.\nAvailable options are: item, percent")
	register(key.ScrollAfterItem, constant.AfterItem, "Preload when the viewport reaches the N-th item from the end")
	register(key.ScrollAfterPercent, constant.AfterPercent, "Preload when this share of the feed block was scrolled")
	register(key.ScrollEventsToLoad, true, "Whether the server reported more items at start-up")
	register(key.PlayerAutoplay, "off", "Video autoplay mode.\nAvailable options are: off, on, on_mute")
	register(key.Player, "virtual", "Player technology for media items.\nAvailable options are: virtual, mpv")
	register(key.PlayerEvictOnRemove, true, "Drop players whose item left the document")
	register(key.VisibilityThreshold, constant.VisibilityThreshold, "Visible share of a video required to play it (0-1)")
	register(key.VisibilityMode, "auto", "Visibility observation strategy.\nAvailable options are: auto, threshold, polling")
	register(key.ViewedAutoMark, false, "Mark items as viewed once scrolled past")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, plain")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
