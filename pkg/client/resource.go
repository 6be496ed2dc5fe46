package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Confirmer asks the user before a destructive call
type Confirmer interface {
	Confirm(message string) bool
}

// ConfirmFunc adapts a plain function to Confirmer
type ConfirmFunc func(message string) bool

func (f ConfirmFunc) Confirm(message string) bool { return f(message) }

// Resource is the list / save / delete pattern shared by the admin screens
type Resource[T any] struct {
	client *Client
	path   string
}

func NewResource[T any](c *Client, path string) *Resource[T] {
	return &Resource[T]{client: c, path: path}
}

// List fetches every item. Both bare arrays and paginated pages are accepted;
// for pages only the first one is returned, use ListPage for more.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	return r.ListPage(ctx, 0, 0)
}

// ListPage fetches one page; zero values let the server pick its defaults
func (r *Resource[T]) ListPage(ctx context.Context, page, perPage int) ([]T, error) {
	path := r.path
	query := url.Values{}
	if page > 0 {
		query.Set("page", fmt.Sprint(page))
	}
	if perPage > 0 {
		query.Set("per_page", fmt.Sprint(perPage))
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var raw json.RawMessage
	if err := r.client.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[T](raw)
}

// Save updates the item when editingID is set, otherwise it creates one
func (r *Resource[T]) Save(ctx context.Context, editingID string, body any) (*T, error) {
	method, path := http.MethodPost, r.path
	if editingID != "" {
		method, path = http.MethodPut, r.path+"/"+url.PathEscape(editingID)
	}

	var out T
	if err := r.client.do(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the item only once confirm agrees. It reports whether a
// request was sent.
func (r *Resource[T]) Delete(ctx context.Context, id string, confirm Confirmer) (bool, error) {
	if confirm == nil || !confirm.Confirm("Are you sure you want to delete this item?") {
		return false, nil
	}

	if err := r.client.do(ctx, http.MethodDelete, r.path+"/"+url.PathEscape(id), nil, nil); err != nil {
		return true, err
	}
	return true, nil
}

func decodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return []T{}, nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return items, nil
	}

	var page Page[T]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	if page.Data == nil {
		page.Data = []T{}
	}
	return page.Data, nil
}
