// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package portal

import (
	"context"
	"net/url"
	"strconv"
)

// Login exchanges credentials for a token. It works on a client without one.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var res LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.post(ctx, "/auth/login", body, "Login failed", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Users returns one page of the users listing.
func (c *Client) Users(ctx context.Context, q UserQuery) (*UserPage, error) {
	v := url.Values{}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Cursor != "" {
		v.Set("cursor", q.Cursor)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Role != "" {
		v.Set("role", q.Role)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}

	var page UserPage
	if err := c.get(ctx, "/auth/users", v, "Failed to fetch users", &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SearchUsers runs a free text user search.
func (c *Client) SearchUsers(ctx context.Context, search string) (*UserPage, error) {
	var page UserPage
	v := url.Values{"search": []string{search}}
	if err := c.get(ctx, "/auth/search-user", v, "Failed to search users", &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) PanCards(ctx context.Context) ([]PanCard, error) {
	var env struct {
		Data []PanCard `json:"data"`
	}
	if err := c.get(ctx, "/pancard", nil, "Failed to fetch pancards", &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) Documents(ctx context.Context) ([]Document, error) {
	var env struct {
		Data []Document `json:"data"`
	}
	if err := c.get(ctx, "/document", nil, "Failed to fetch documents", &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) Dashboard(ctx context.Context) (*Dashboard, error) {
	var env struct {
		Data Dashboard `json:"data"`
	}
	if err := c.get(ctx, "/auth/dashboard", nil, "Failed to fetch dashboard", &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}
