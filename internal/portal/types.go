// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package portal

// Roles known to the portal.
const (
	RoleUser   = "user"
	RoleAdmin  = "admin"
	RoleMaster = "master"
)

// Sort orders accepted by the users endpoint.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
)

type User struct {
	ID           string `json:"_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Mobile       string `json:"mobile,omitempty"`
	Role         string `json:"role,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
	PanCardCount int    `json:"panCardCount"`
}

type PanCard struct {
	ID        string `json:"_id"`
	User      string `json:"user,omitempty"`
	Name      string `json:"panCardName"`
	Number    string `json:"panCardNumber"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

type Document struct {
	ID        string  `json:"_id"`
	User      string  `json:"user"`
	Name      string  `json:"documentName"`
	PanCard   PanCard `json:"panCard"`
	URL       string  `json:"documentUrl"`
	About     string  `json:"aboutDocument"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

type RoleStats struct {
	Users   int `json:"users"`
	Admins  int `json:"admins"`
	Masters int `json:"masters"`
}

type Dashboard struct {
	TotalUsers     int       `json:"totalUsers"`
	TotalDocuments int       `json:"totalDocuments"`
	TotalPanCards  int       `json:"totalPanCards"`
	ActiveToday    int       `json:"activeToday"`
	RecentSignups  int       `json:"recentSignups"`
	RoleStats      RoleStats `json:"roleStats"`
}

// UserQuery is the filter set of the users listing. Zero values are left out
// of the request.
type UserQuery struct {
	Cursor string
	Limit  int
	Search string
	Role   string
	Sort   string
}

// UserPage is one page of the users listing. A null nextCursor decodes to "".
type UserPage struct {
	Success    bool   `json:"success"`
	Data       []User `json:"data"`
	NextCursor string `json:"nextCursor"`
	HasMore    bool   `json:"hasMore"`
}

// LoginResult is the body of a successful login.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
