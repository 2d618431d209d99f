// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// panctlgo is the main package for the panctl command line tool. It wires the
// CLI for the PAN card portal, delegates to internal packages, and serves as
// the entry point.
package main
