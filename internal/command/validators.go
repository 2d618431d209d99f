// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/panctlgo/internal/portal"
)

// GlobalFlagsValidator checks flag combinations no single validator can see.
func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	if c.String("output") == "raw" && c.String("filter") != "" {
		return errors.New("--filter has no effect with --output=raw")
	}
	return nil
}

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

func MustBeTrueValidator(value any) error {
	if !value.(bool) {
		return errors.New("must be true")
	}
	return nil
}

func NonNegativeValidator(value any) error {
	if value.(int) < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

func OutputValidator(value any) error {
	return oneOf(value, "text", "json", "raw", "yaml")
}

// RoleValidator accepts the portal roles and the empty string for all.
func RoleValidator(value any) error {
	return oneOf(value, "", portal.RoleUser, portal.RoleAdmin, portal.RoleMaster)
}

func OrderValidator(value any) error {
	return oneOf(value, portal.SortNewest, portal.SortOldest)
}

// HostValidator requires an absolute http(s) URL.
func HostValidator(value any) error {
	u, err := url.Parse(value.(string))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("must be an http(s) URL such as " + portal.DefaultBaseURL)
	}
	return nil
}

func oneOf(value any, valid ...string) error {
	if s, ok := value.(string); ok && slices.Contains(valid, s) {
		return nil
	}
	return fmt.Errorf("must be one of %q", valid)
}
