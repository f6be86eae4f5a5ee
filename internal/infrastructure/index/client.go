// Package index is a best-effort client of the discovery index service.
// Every call reports failure as a nil result so callers can fall back
// to reading storage directly.
package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/exp/slog"

	"eventky/internal/domain/calendar"
	"eventky/internal/domain/event"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodySize    = 8 << 20
	userAgent      = "Eventky-Client/1.0"
)

type Size string

const (
	SizeSmall Size = "small"
	SizeFeed  Size = "feed"
	SizeMain  Size = "main"
)

// sizePreference is tried in order when the requested size is missing.
var sizePreference = []Size{SizeMain, SizeFeed, SizeSmall}

type BootstrapResponse struct {
	Users []json.RawMessage `json:"users"`
	Posts []json.RawMessage `json:"posts"`
	List  json.RawMessage   `json:"list"`
}

// FileRecord is the index's view of an uploaded file. URLs maps each
// available size to the path it was indexed under.
type FileRecord struct {
	ID          string          `json:"id"`
	URI         string          `json:"uri"`
	OwnerID     string          `json:"owner_id"`
	Name        string          `json:"name"`
	Src         string          `json:"src"`
	ContentType string          `json:"content_type"`
	Size        int             `json:"size"`
	CreatedAt   int64           `json:"created_at"`
	IndexedAt   int64           `json:"indexed_at"`
	URLs        map[Size]string `json:"urls"`
}

type CalendarView struct {
	ID      string `json:"id"`
	URI     string `json:"uri"`
	OwnerID string `json:"author"`
	calendar.Calendar
}

type EventView struct {
	ID      string `json:"id"`
	URI     string `json:"uri"`
	OwnerID string `json:"author"`
	event.Event
}

type Client struct {
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log.With("component", "index_client"),
	}
}

// GetBootstrap returns the bootstrap bundle of ownerID, or nil.
func (c *Client) GetBootstrap(ctx context.Context, ownerID string) *BootstrapResponse {
	var out BootstrapResponse
	if !c.do(ctx, http.MethodGet, "/v0/bootstrap/"+url.PathEscape(ownerID), nil, &out) {
		return nil
	}
	return &out
}

// GetFilesByIDs looks up file records in one batch, or returns nil.
func (c *Client) GetFilesByIDs(ctx context.Context, uris []string) []FileRecord {
	if len(uris) == 0 {
		return []FileRecord{}
	}
	var out []FileRecord
	if !c.do(ctx, http.MethodPost, "/v0/files/by_ids", map[string][]string{"uris": uris}, &out) {
		return nil
	}
	if out == nil {
		out = []FileRecord{}
	}
	return out
}

// GetCalendar returns the indexed calendar, or nil when the index does
// not have it (yet).
func (c *Client) GetCalendar(ctx context.Context, ownerID, calendarID string) *CalendarView {
	var out CalendarView
	path := "/v0/calendar/" + url.PathEscape(ownerID) + "/" + url.PathEscape(calendarID)
	if !c.do(ctx, http.MethodGet, path, nil, &out) {
		return nil
	}
	return &out
}

// GetEvents returns the indexed events of ownerID, or nil.
func (c *Client) GetEvents(ctx context.Context, ownerID string) []EventView {
	var out []EventView
	if !c.do(ctx, http.MethodGet, "/v0/events?author="+url.QueryEscape(ownerID), nil, &out) {
		return nil
	}
	if out == nil {
		out = []EventView{}
	}
	return out
}

// FileImageURL derives the static URL of rec at size, falling back to
// the first available of main, feed and small. It returns "" when rec
// has no usable size.
func (c *Client) FileImageURL(rec *FileRecord, size Size) string {
	if rec == nil || rec.OwnerID == "" || rec.ID == "" {
		return ""
	}
	pick := Size("")
	if rec.URLs[size] != "" {
		pick = size
	} else {
		for _, s := range sizePreference {
			if rec.URLs[s] != "" {
				pick = s
				break
			}
		}
	}
	if pick == "" {
		return ""
	}
	return fmt.Sprintf("%s/static/files/%s/%s/%s", c.baseURL, url.PathEscape(rec.OwnerID), url.PathEscape(rec.ID), pick)
}

// do performs the request and decodes a 2xx JSON body into out. Any
// failure is logged and reported as false.
func (c *Client) do(ctx context.Context, method, path string, body, out any) bool {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			c.log.Error("failed to encode request", "path", path, "error", err)
			return false
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		c.log.Error("failed to build request", "path", path, "error", err)
		return false
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("sending request", "method", method, "url", req.URL.String())

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("index service unreachable", "path", path, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.log.Debug("index service returned no data", "path", path, "status", resp.StatusCode)
		return false
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(out); err != nil {
		c.log.Warn("failed to decode index response", "path", path, "error", err)
		return false
	}
	return true
}
