// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package driller pulls a single value out of a JSON document by a dotted
// path, the way attribute and filter keys address portal records.
package driller
