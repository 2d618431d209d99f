// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package session keeps the operator's portal login between invocations.
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"
	"github.com/golang-jwt/jwt/v5"
	"gopkg.in/yaml.v3"

	"github.com/staranto/panctlgo/internal/cache"
	"github.com/staranto/panctlgo/internal/portal"
)

var (
	ErrNoSession = errors.New("not logged in, run 'panctl login'")
	ErrExpired   = errors.New("session expired, run 'panctl login'")
	ErrNotAdmin  = errors.New("admin or master role required")
)

// Session is the persisted login.
type Session struct {
	Host      string      `yaml:"host"`
	Token     string      `yaml:"token"`
	User      portal.User `yaml:"user,omitempty"`
	CreatedAt time.Time   `yaml:"created_at"`
}

// Claims are the token claims panctl cares about.
type Claims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

// Path resolves the session file.
// Precedence:
//  1. PANCTL_SESSION, if set and non-empty
//  2. os.UserConfigDir()/panctl/session.yaml
func Path() (string, error) {
	if p, ok := os.LookupEnv("PANCTL_SESSION"); ok && p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve session directory: %w", err)
	}
	return filepath.Join(dir, "panctl", "session.yaml"), nil
}

// Load reads the saved session. A PANCTL_TOKEN in the environment overrides
// the saved token, and is enough on its own.
func Load() (*Session, error) {
	s := &Session{}

	p, err := Path()
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(p)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, s); err != nil {
			return nil, fmt.Errorf("failed to parse session file %s: %w", p, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read session file %s: %w", p, err)
	}

	if tok := os.Getenv("PANCTL_TOKEN"); tok != "" {
		log.Debug("using token from PANCTL_TOKEN")
		s.Token = tok
	}

	if s.Token == "" {
		return nil, ErrNoSession
	}
	return s, nil
}

// Save writes s readable by the owner only.
func Save(s *Session) error {
	p, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	b, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(p, b, 0o600); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Remove deletes the session file. A missing file is not an error.
func Remove() error {
	p, err := Path()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// Logout forgets the login and everything cached under it.
func Logout(store cache.Store) error {
	var errs []error
	if err := Remove(); err != nil {
		errs = append(errs, err)
	}
	if err := cache.ClearAll(store); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Claims decodes the token without verifying it. Verification is the
// portal's business; panctl only reads the role and expiry for early, local
// feedback.
func (s *Session) Claims() (Claims, error) {
	var c Claims

	tok, _, err := jwt.NewParser().ParseUnverified(s.Token, jwt.MapClaims{})
	if err != nil {
		return c, fmt.Errorf("failed to parse token: %w", err)
	}

	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return c, errors.New("unexpected token claims")
	}

	if sub, err := mc.GetSubject(); err == nil {
		c.Subject = sub
	}
	if c.Subject == "" {
		if id, ok := mc["id"].(string); ok {
			c.Subject = id
		}
	}
	if role, ok := mc["role"].(string); ok {
		c.Role = role
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}

// Identity names the account behind the token, for keeping one account's
// cached results away from another's. It hashes the token's subject, or the
// token itself when it carries none, and is "" without a token.
func (s *Session) Identity() string {
	if s == nil || s.Token == "" {
		return ""
	}
	id := s.Token
	if c, err := s.Claims(); err == nil && c.Subject != "" {
		id = "sub:" + c.Subject
	}
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:8])
}

// Role is the token's role claim, falling back to the role the portal
// reported at login. It is "" when neither knows.
func (s *Session) Role() string {
	if c, err := s.Claims(); err == nil && c.Role != "" {
		return c.Role
	}
	return s.User.Role
}

// Expired reports whether the token carries an expiry before now.
func (s *Session) Expired(now time.Time) bool {
	c, err := s.Claims()
	if err != nil || c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt)
}

// IsAdmin is true for the admin and master roles.
func IsAdmin(role string) bool {
	return role == portal.RoleAdmin || role == portal.RoleMaster
}

// RequireAdmin guards the admin listings. An unknown role is let through and
// left for the portal to refuse.
func (s *Session) RequireAdmin() error {
	role := s.Role()
	if role == "" || IsAdmin(role) {
		return nil
	}
	return fmt.Errorf("%w: logged in as %s", ErrNotAdmin, role)
}
