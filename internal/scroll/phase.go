// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package scroll

import (
	"errors"
	"fmt"
)

// Phase is where a Pager is in its fetch cycle.
type Phase int

const (
	Idle Phase = iota
	FetchingInitial
	FetchingMore
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case FetchingInitial:
		return "fetching-initial"
	case FetchingMore:
		return "fetching-more"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Busy reports whether a fetch is in flight.
func (p Phase) Busy() bool {
	return p != Idle
}

// Event drives Phase transitions.
type Event int

const (
	StartInitial Event = iota
	StartMore
	Succeeded
	Failed
)

var ErrIllegalTransition = errors.New("illegal phase transition")

// Next returns the phase that follows ev. Starting while busy and finishing
// while idle are both illegal; the caller keeps the current phase.
func (p Phase) Next(ev Event) (Phase, error) {
	switch ev {
	case StartInitial, StartMore:
		if p.Busy() {
			return p, fmt.Errorf("%w: start while %s", ErrIllegalTransition, p)
		}
		if ev == StartInitial {
			return FetchingInitial, nil
		}
		return FetchingMore, nil
	case Succeeded, Failed:
		if !p.Busy() {
			return p, fmt.Errorf("%w: finish while %s", ErrIllegalTransition, p)
		}
		return Idle, nil
	}
	return p, fmt.Errorf("%w: unknown event %d", ErrIllegalTransition, int(ev))
}
