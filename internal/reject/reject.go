// Package reject defines why a frame candidate did not produce a reading.
package reject

import (
	"errors"
	"fmt"
)

// Reason identifies one rejection kind.
type Reason int

const (
	NoMatchingRow Reason = iota + 1
	BadPreamble
	BadTrailer
	SanityTrailerMismatch
	ChannelOutOfRange
	InvalidBcd
	TemperatureOutOfRange
	TemperatureDeltaTooLarge
	TrackerFull
)

// Class groups reasons by what went wrong.
type Class int

const (
	Absence Class = iota + 1
	Structural
	Semantic
	Plausibility
	Exhaustion
)

var reasonNames = map[Reason]string{
	NoMatchingRow:            "no_matching_row",
	BadPreamble:              "bad_preamble",
	BadTrailer:               "bad_trailer",
	SanityTrailerMismatch:    "sanity_trailer_mismatch",
	ChannelOutOfRange:        "channel_out_of_range",
	InvalidBcd:               "invalid_bcd",
	TemperatureOutOfRange:    "temperature_out_of_range",
	TemperatureDeltaTooLarge: "temperature_delta_too_large",
	TrackerFull:              "tracker_full",
}

func (r Reason) String() string {
	if s, ok := reasonNames[r]; ok {
		return s
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// Class returns the group r belongs to.
func (r Reason) Class() Class {
	switch r {
	case NoMatchingRow:
		return Absence
	case BadPreamble, BadTrailer, SanityTrailerMismatch:
		return Structural
	case ChannelOutOfRange, InvalidBcd, TemperatureOutOfRange:
		return Semantic
	case TemperatureDeltaTooLarge:
		return Plausibility
	case TrackerFull:
		return Exhaustion
	default:
		return 0
	}
}

func (c Class) String() string {
	switch c {
	case Absence:
		return "absence"
	case Structural:
		return "structural"
	case Semantic:
		return "semantic"
	case Plausibility:
		return "plausibility"
	case Exhaustion:
		return "exhaustion"
	default:
		return "unknown"
	}
}

// Error is a rejection with diagnostic detail.
type Error struct {
	Reason Reason
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Reason.String()
	}
	return e.Reason.String() + ": " + e.Detail
}

// Is matches any *Error carrying the same reason, so the sentinels below
// work with errors.Is regardless of detail.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Reason == e.Reason
}

// Sentinels for errors.Is.
var (
	ErrNoMatchingRow            = &Error{Reason: NoMatchingRow}
	ErrBadPreamble              = &Error{Reason: BadPreamble}
	ErrBadTrailer               = &Error{Reason: BadTrailer}
	ErrSanityTrailerMismatch    = &Error{Reason: SanityTrailerMismatch}
	ErrChannelOutOfRange        = &Error{Reason: ChannelOutOfRange}
	ErrInvalidBcd               = &Error{Reason: InvalidBcd}
	ErrTemperatureOutOfRange    = &Error{Reason: TemperatureOutOfRange}
	ErrTemperatureDeltaTooLarge = &Error{Reason: TemperatureDeltaTooLarge}
	ErrTrackerFull              = &Error{Reason: TrackerFull}
)

// New returns a rejection with a formatted detail.
func New(r Reason, format string, args ...any) *Error {
	return &Error{Reason: r, Detail: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the rejection reason from err.
func ReasonOf(err error) (Reason, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason, true
	}
	return 0, false
}
