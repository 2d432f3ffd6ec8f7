// Package event provides the event bus: a single consumer loop fanning
// engine and domain events out to predicate-filtered subscribers.
package event

import "github.com/samber/lo"

// Event is a named event with its payload.
type Event struct {
	Name string
	Data any
}

// Matcher selects which events a subscription receives.
type Matcher interface {
	Matches(e Event) bool
}

// Exact matches events with exactly this name.
type Exact string

// Matches implements Matcher.
func (m Exact) Matches(e Event) bool { return e.Name == string(m) }

// AnyOf matches events whose name is in the set.
type AnyOf []string

// Matches implements Matcher.
func (m AnyOf) Matches(e Event) bool { return lo.Contains(m, e.Name) }

// Filter matches events with an arbitrary predicate.
type Filter func(Event) bool

// Matches implements Matcher.
func (m Filter) Matches(e Event) bool { return m(e) }
