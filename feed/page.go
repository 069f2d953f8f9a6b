package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/samber/mo"
)

// Page is one fetch-posts response. Every field is optional and applied on its own.
type Page struct {
	// Items is the HTML fragment of the returned items.
	Items         mo.Option[string] `json:"items"`
	LoadMore      mo.Option[string] `json:"load_more"`
	Back          mo.Option[string] `json:"back"`
	Empty         mo.Option[string] `json:"empty"`
	GoTo          mo.Option[string] `json:"go_to"`
	MoreAvailable mo.Option[bool]   `json:"events_to_load"`
}

// Response is the wire shape of a fetch-posts reply.
type Response struct {
	Items        *string `json:"items,omitempty" jsonschema:"description=HTML of the returned items"`
	LoadMore     *string `json:"load_more,omitempty" jsonschema:"description=HTML of the load more control"`
	Back         *string `json:"back,omitempty" jsonschema:"description=HTML of the back control"`
	Empty        *string `json:"empty,omitempty" jsonschema:"description=HTML shown when the feed has no items"`
	GoTo         *string `json:"go_to,omitempty" jsonschema:"description=Anchor to scroll to"`
	EventsToLoad *Flag   `json:"events_to_load,omitempty" jsonschema:"description=Whether more items are available"`
}

// Page converts the wire shape.
func (r Response) Page() *Page {
	more := mo.None[bool]()
	if r.EventsToLoad != nil {
		more = mo.Some(bool(*r.EventsToLoad))
	}

	return &Page{
		Items:         mo.PointerToOption(r.Items),
		LoadMore:      mo.PointerToOption(r.LoadMore),
		Back:          mo.PointerToOption(r.Back),
		Empty:         mo.PointerToOption(r.Empty),
		GoTo:          mo.PointerToOption(r.GoTo),
		MoreAvailable: more,
	}
}

// ParsePage decodes a fetch-posts body. Unknown fields are ignored; null fields and
// fields of the wrong type count as absent instead of failing the whole page.
func ParsePage(body []byte) (*Page, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}

	return Response{
		Items:        optional[string](fields, "items"),
		LoadMore:     optional[string](fields, "load_more"),
		Back:         optional[string](fields, "back"),
		Empty:        optional[string](fields, "empty"),
		GoTo:         optional[string](fields, "go_to"),
		EventsToLoad: optional[Flag](fields, "events_to_load"),
	}.Page(), nil
}

func optional[T any](fields map[string]json.RawMessage, name string) *T {
	raw, ok := fields[name]
	if !ok || string(bytes.TrimSpace(raw)) == "null" {
		return nil
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

// Flag is a boolean the server may send as true/false, 0/1 or "0"/"1".
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	switch strings.ToLower(s) {
	case "true", "1":
		*f = true
	case "false", "0", "", "null":
		*f = false
	default:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid flag %s", b)
		}
		*f = n != 0
	}
	return nil
}

// JSONSchema describes the accepted spellings.
func (Flag) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "boolean"},
			{Type: "integer"},
			{Type: "string"},
		},
	}
}

// IDs is an id list the server may send as a scalar or as an array.
type IDs []int

// UnmarshalJSON implements json.Unmarshaler.
func (ids *IDs) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*ids = nil
		return nil
	}

	if b[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		out := make(IDs, 0, len(raw))
		for _, r := range raw {
			id, err := parseID(r)
			if err != nil {
				return err
			}
			out = append(out, id)
		}
		*ids = out
		return nil
	}

	id, err := parseID(b)
	if err != nil {
		return err
	}
	*ids = IDs{id}
	return nil
}

func parseID(b []byte) (int, error) {
	s := strings.Trim(string(b), `"`)
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid id %s", b)
	}
	return id, nil
}

// Item is a fetch-single-item response.
type Item struct {
	ID   int    `json:"id"`
	HTML string `json:"item"`
}

type itemResponse struct {
	ID   json.RawMessage `json:"id"`
	Item string          `json:"item"`
}

type markResponse struct {
	ID IDs `json:"id"`
}

func idsOf(raw json.RawMessage) (IDs, error) {
	var ids IDs
	if len(raw) == 0 {
		return nil, nil
	}
	err := ids.UnmarshalJSON(raw)
	return ids, err
}

// Schema returns the JSON schema of a fetch-posts reply.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{DoNotReference: true}
	return r.Reflect(&Response{})
}
