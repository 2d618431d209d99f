// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package feed turns portal listings into the cache keys and fetch functions
// a scroll.Pager runs on.
package feed

import (
	"context"

	"github.com/staranto/panctlgo/internal/cache"
	"github.com/staranto/panctlgo/internal/portal"
	"github.com/staranto/panctlgo/internal/scroll"
)

// Cache key bases, one per listing.
const (
	UsersBase     = "users"
	SearchBase    = "search-user"
	PanCardsBase  = "pancards"
	DocumentsBase = "documents"
)

// DefaultPageSize is how many users are asked for per page.
const DefaultPageSize = 10

type UserLister interface {
	Users(ctx context.Context, q portal.UserQuery) (*portal.UserPage, error)
}

type UserSearcher interface {
	SearchUsers(ctx context.Context, search string) (*portal.UserPage, error)
}

type PanCardLister interface {
	PanCards(ctx context.Context) ([]portal.PanCard, error)
}

type DocumentLister interface {
	Documents(ctx context.Context) ([]portal.Document, error)
}

// UsersKey is the cache key of a users query. The cursor and page size are
// not part of the identity of the result set.
func UsersKey(q portal.UserQuery) string {
	return cache.GenerateKey(UsersBase, cache.Params{
		"search": q.Search,
		"role":   q.Role,
		"sort":   q.Sort,
	})
}

// Users pages through the users listing for q.
func Users(src UserLister, q portal.UserQuery) scroll.FetchFunc[portal.User] {
	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}
	return func(ctx context.Context, cursor string) (scroll.Page[portal.User], error) {
		pq := q
		pq.Cursor = cursor

		page, err := src.Users(ctx, pq)
		if err != nil {
			return scroll.Page[portal.User]{}, err
		}
		return scroll.Page[portal.User]{
			Items:      page.Data,
			NextCursor: page.NextCursor,
			HasMore:    page.HasMore && page.NextCursor != "",
		}, nil
	}
}

func SearchKey(term string) string {
	return cache.GenerateKey(SearchBase, cache.Params{"search": term})
}

// Search is a single page feed over the user search endpoint.
func Search(src UserSearcher, term string) scroll.FetchFunc[portal.User] {
	return func(ctx context.Context, _ string) (scroll.Page[portal.User], error) {
		page, err := src.SearchUsers(ctx, term)
		if err != nil {
			return scroll.Page[portal.User]{}, err
		}
		return scroll.Page[portal.User]{Items: page.Data}, nil
	}
}

// PanCards is a single page feed over the PAN card listing.
func PanCards(src PanCardLister) scroll.FetchFunc[portal.PanCard] {
	return func(ctx context.Context, _ string) (scroll.Page[portal.PanCard], error) {
		cards, err := src.PanCards(ctx)
		if err != nil {
			return scroll.Page[portal.PanCard]{}, err
		}
		return scroll.Page[portal.PanCard]{Items: cards}, nil
	}
}

// Documents is a single page feed over the document listing.
func Documents(src DocumentLister) scroll.FetchFunc[portal.Document] {
	return func(ctx context.Context, _ string) (scroll.Page[portal.Document], error) {
		docs, err := src.Documents(ctx)
		if err != nil {
			return scroll.Page[portal.Document]{}, err
		}
		return scroll.Page[portal.Document]{Items: docs}, nil
	}
}
