// Package events defines the catalog of framework event kinds, their
// payload types, and constructors that stamp each event with its
// conventional category and priority.
//
// Feature code should emit these constructors rather than building
// event.Event values by hand, so that filters keyed on category and
// priority behave consistently across the application.
package events
