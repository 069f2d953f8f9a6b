// Package feed talks to the feed endpoint: pages of items, single items and the
// mark-as-viewed action.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/feedview/feedview/constant"
	"github.com/feedview/feedview/log"
	"github.com/feedview/feedview/network"
	"github.com/patrickmn/go-cache"
)

// ErrStatus is returned for non-2xx responses.
var ErrStatus = errors.New("unexpected status")

// Scope carries the request parameters identifying a view and its current selection.
type Scope struct {
	Name     string
	View     string
	Type     string
	OwnerID  int
	Filter   string
	Timeline string
	Blink    string
}

func (s Scope) values() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}

	set("name", s.Name)
	set("view", s.View)
	set("type", s.Type)
	if s.OwnerID != 0 {
		v.Set("owner_id", strconv.Itoa(s.OwnerID))
	}
	set("filter", s.Filter)
	set("timeline", s.Timeline)
	set("blink", s.Blink)
	return v
}

// Key identifies the scope in caches and logs.
func (s Scope) Key() string {
	return strings.Join([]string{s.Name, s.View, s.Type, strconv.Itoa(s.OwnerID)}, "-")
}

// Client is what the pagination and viewed-ids components need from the endpoint.
type Client interface {
	FetchPage(ctx context.Context, scope Scope, start, perPage int) (*Page, error)
	FetchItem(ctx context.Context, scope Scope, id int) (*Item, error)
	MarkViewed(ctx context.Context, scope Scope, ids []int) (IDs, error)
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	base  *url.URL
	http  *http.Client
	items *cache.Cache
}

// Option customises an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the shared network client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.http = c }
}

// WithItemCacheTTL sets how long single items are reused. Zero disables the cache.
func WithItemCacheTTL(ttl time.Duration) Option {
	return func(h *HTTPClient) {
		if ttl <= 0 {
			h.items = nil
			return
		}
		h.items = cache.New(ttl, 2*ttl)
	}
}

// NewHTTPClient creates a client for the actions below actionURL.
func NewHTTPClient(actionURL string, opts ...Option) (*HTTPClient, error) {
	if !strings.HasSuffix(actionURL, "/") {
		actionURL += "/"
	}

	base, err := url.Parse(actionURL)
	if err != nil {
		return nil, fmt.Errorf("parse action url: %w", err)
	}

	h := &HTTPClient{
		base:  base,
		http:  network.Client,
		items: cache.New(constant.ItemCacheTTL, 2*constant.ItemCacheTTL),
	}
	for _, opt := range opts {
		opt(h)
	}

	return h, nil
}

func (h *HTTPClient) endpoint(action string, query url.Values) string {
	u := h.base.ResolveReference(&url.URL{Path: action + "/"})
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (h *HTTPClient) do(req *http.Request) ([]byte, error) {
	resp, err := h.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	return body, nil
}

// FetchPage requests perPage items starting at start.
func (h *HTTPClient) FetchPage(ctx context.Context, scope Scope, start, perPage int) (*Page, error) {
	q := scope.values()
	q.Set("start", strconv.Itoa(start))
	q.Set("per_page", strconv.Itoa(perPage))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.endpoint("get_posts", q), nil)
	if err != nil {
		return nil, err
	}

	body, err := h.do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page %d: %w", start, err)
	}

	page, err := ParsePage(body)
	if err != nil {
		return nil, fmt.Errorf("fetch page %d: %w", start, err)
	}

	log.WithFields(log.Fields{"scope": scope.Key(), "start": start, "per_page": perPage}).Debug("page fetched")
	return page, nil
}

// FetchItem requests a single item, reusing a recent answer for the same id.
func (h *HTTPClient) FetchItem(ctx context.Context, scope Scope, id int) (*Item, error) {
	cacheKey := scope.Key() + ":" + strconv.Itoa(id)
	if h.items != nil {
		if cached, ok := h.items.Get(cacheKey); ok {
			return cached.(*Item), nil
		}
	}

	q := scope.values()
	q.Set("id", strconv.Itoa(id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.endpoint("get_post", q), nil)
	if err != nil {
		return nil, err
	}

	body, err := h.do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch item %d: %w", id, err)
	}

	var resp itemResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("fetch item %d: %w", id, err)
	}

	item := &Item{ID: id, HTML: resp.Item}
	if ids, err := idsOf(resp.ID); err == nil && len(ids) > 0 {
		item.ID = ids[0]
	}

	if h.items != nil {
		h.items.SetDefault(cacheKey, item)
	}
	return item, nil
}

// Forget drops a cached item, e.g. after it was edited or deleted.
func (h *HTTPClient) Forget(scope Scope, id int) {
	if h.items != nil {
		h.items.Delete(scope.Key() + ":" + strconv.Itoa(id))
	}
}

// MarkViewed reports ids as viewed in one request and returns the ids the server
// acknowledged.
func (h *HTTPClient) MarkViewed(ctx context.Context, scope Scope, ids []int) (IDs, error) {
	form := scope.values()
	for _, id := range ids {
		form.Add("id[]", strconv.Itoa(id))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint("mark_as_read", nil), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := h.do(req)
	if err != nil {
		return nil, fmt.Errorf("mark viewed: %w", err)
	}

	var resp markResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("mark viewed: %w", err)
	}

	return resp.ID, nil
}
