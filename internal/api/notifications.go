package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/advising-app/advising-notify/internal/domain"
)

const notificationsPath = "/api/notifications"

// DefaultPageSize is the page size the feed requests.
const DefaultPageSize = 20

// Page is one page of the notification list.
type Page struct {
	Content       []domain.Notification `json:"content"`
	TotalElements int64                 `json:"totalElements,omitempty"`
	TotalPages    int                   `json:"totalPages,omitempty"`
	Number        int                   `json:"number,omitempty"`
}

// UnmarshalJSON accepts either a page object or a bare array of records.
func (p *Page) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []domain.Notification
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return err
		}
		*p = Page{Content: records}
		return nil
	}
	type page Page
	var raw page
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	*p = Page(raw)
	return nil
}

// ListOptions selects a page of notifications.
type ListOptions struct {
	Page       int
	Size       int
	UnreadOnly bool
}

// idsRequest is the body of the batch endpoints.
type idsRequest struct {
	IDs []int64 `json:"ids"`
}

// UnreadCount returns the server's unread counter.
func (c *Client) UnreadCount(ctx context.Context) (int64, error) {
	var n int64
	if err := c.do(ctx, http.MethodGet, notificationsPath+"/unread-count", nil, &n); err != nil {
		return 0, fmt.Errorf("unread count: %w", err)
	}
	return n, nil
}

// List fetches one page of notifications. A zero Size means DefaultPageSize.
func (c *Client) List(ctx context.Context, opts ListOptions) (Page, error) {
	size := opts.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	page := opts.Page
	if page < 0 {
		page = 0
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	q.Set("unreadOnly", strconv.FormatBool(opts.UnreadOnly))

	var out Page
	if err := c.do(ctx, http.MethodGet, notificationsPath+"?"+q.Encode(), nil, &out); err != nil {
		return Page{}, fmt.Errorf("list notifications: %w", err)
	}
	if out.Content == nil {
		out.Content = []domain.Notification{}
	}
	return out, nil
}

// MarkRead marks one notification read on the server.
func (c *Client) MarkRead(ctx context.Context, id int64) error {
	path := fmt.Sprintf("%s/%d/read", notificationsPath, id)
	if err := c.do(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("mark read %d: %w", id, err)
	}
	return nil
}

// MarkAllRead marks every notification of the user read.
func (c *Client) MarkAllRead(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, notificationsPath+"/mark-all-read", nil, nil); err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}

// MarkReadBatch marks the given notifications read.
func (c *Client) MarkReadBatch(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if err := c.do(ctx, http.MethodPost, notificationsPath+"/mark-read-batch", idsRequest{IDs: ids}, nil); err != nil {
		return fmt.Errorf("mark read batch: %w", err)
	}
	return nil
}

// Delete removes one notification.
func (c *Client) Delete(ctx context.Context, id int64) error {
	path := fmt.Sprintf("%s/%d", notificationsPath, id)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete %d: %w", id, err)
	}
	return nil
}

// DeleteBatch removes the given notifications.
func (c *Client) DeleteBatch(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if err := c.do(ctx, http.MethodPost, notificationsPath+"/delete-batch", idsRequest{IDs: ids}, nil); err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	return nil
}

// RegisterDeviceToken posts the push device token for the current user.
func (c *Client) RegisterDeviceToken(ctx context.Context, token string) error {
	body := struct {
		Token string `json:"token"`
	}{Token: token}
	if err := c.do(ctx, http.MethodPost, notificationsPath+"/device-token", body, nil); err != nil {
		return fmt.Errorf("register device token: %w", err)
	}
	return nil
}
