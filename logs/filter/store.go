// Package filter holds the shared filter criteria for the list and dashboard
// views. All writes go through Store.UpdateFilter and Store.Reset.
package filter

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/monobilisim/logdesk/logs/format"
	"github.com/rs/zerolog/log"
)

// Field names a filter input.
type Field string

const (
	StartDate Field = "startDate"
	EndDate   Field = "endDate"
	Severity  Field = "severity"
	Source    Field = "source"
)

// Fields lists every filter field in display order.
var Fields = []Field{StartDate, EndDate, Severity, Source}

// Wire parameter names.
var wireNames = map[Field]string{
	StartDate: "start_date",
	EndDate:   "end_date",
	Severity:  "severity",
	Source:    "source",
}

// Validation messages.
const (
	MsgStartAfterEnd   = "Start date cannot be later than end date"
	MsgEndBeforeStart  = "End date cannot be earlier than start date"
	MsgDateFormat      = "Date must be in YYYY-MM-DD format"
	MsgSeverityUpper   = "Severity must be uppercase"
	MsgSourceLowercase = "Source must be lowercase"
)

var (
	severityPattern = regexp.MustCompile(`^[A-Z]+$`)
	sourcePattern   = regexp.MustCompile(`^[a-z]+$`)
)

// State is the current filter criteria. Empty strings mean "not set".
type State struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Severity  string `json:"severity"`
	Source    string `json:"source"`
}

func (s State) get(f Field) string {
	switch f {
	case StartDate:
		return s.StartDate
	case EndDate:
		return s.EndDate
	case Severity:
		return s.Severity
	case Source:
		return s.Source
	}
	return ""
}

func (s *State) set(f Field, v string) {
	switch f {
	case StartDate:
		s.StartDate = v
	case EndDate:
		s.EndDate = v
	case Severity:
		s.Severity = v
	case Source:
		s.Source = v
	}
}

// Errors maps a field to its validation message. Valid fields have no key.
type Errors map[Field]string

func (e Errors) clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Snapshot is a read-only copy of the store.
type Snapshot struct {
	State  State
	Errors Errors
}

// Store owns the filter state. It is safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	state       State
	errors      Errors
	subscribers map[int]func(Snapshot)
	nextSub     int
}

// NewStore returns a store with every field empty.
func NewStore() *Store {
	return &Store{
		errors:      Errors{},
		subscribers: map[int]func(Snapshot){},
	}
}

// UpdateFilter canonicalizes raw, stores it and re-validates. Invalid values
// are stored and recorded as errors rather than rejected.
func (s *Store) UpdateFilter(name Field, raw string) {
	if _, ok := wireNames[name]; !ok {
		log.Warn().Str("component", "filter").Str("field", string(name)).Msg("Ignoring unknown filter field")
		return
	}

	value := canonicalize(name, raw)

	s.mu.Lock()
	s.state.set(name, value)
	s.validate(name, value)
	snap := s.snapshotLocked()
	subs := s.subscriberList()
	s.mu.Unlock()

	log.Debug().
		Str("component", "filter").
		Str("field", string(name)).
		Str("value", value).
		Int("errors", len(snap.Errors)).
		Msg("Filter updated")

	notify(subs, snap)
}

// Reset clears every field and every error.
func (s *Store) Reset() {
	s.mu.Lock()
	s.state = State{}
	s.errors = Errors{}
	snap := s.snapshotLocked()
	subs := s.subscriberList()
	s.mu.Unlock()

	notify(subs, snap)
}

// QueryParams returns the non-empty fields under their wire names. It does
// not validate; callers check HasErrors first.
func (s *Store) QueryParams() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	params := map[string]string{}
	for _, f := range Fields {
		if v := s.state.get(f); v != "" {
			params[wireNames[f]] = v
		}
	}
	return params
}

// Snapshot returns a copy of the state and errors.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// State returns a copy of the current criteria.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Errors returns a copy of the current validation errors.
func (s *Store) Errors() Errors {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errors.clone()
}

// HasErrors reports whether any field is invalid.
func (s *Store) HasErrors() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.errors) > 0
}

// Subscribe registers fn to receive a snapshot after every change. The
// returned function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// WireName returns the query parameter name for f.
func WireName(f Field) string {
	return wireNames[f]
}

// DefaultDates returns a range covering the seven days up to now, as
// YYYY-MM-DD strings. NewStore does not apply it.
func DefaultDates(now time.Time) (start, end string) {
	return format.ISODate(now.AddDate(0, 0, -7)), format.ISODate(now)
}

func canonicalize(name Field, raw string) string {
	switch name {
	case Severity:
		return strings.ToUpper(raw)
	case Source:
		return strings.ToLower(raw)
	}
	return raw
}

// validate re-checks name and any error that depended on it. Must hold s.mu.
func (s *Store) validate(name Field, value string) {
	switch name {
	case StartDate, EndDate:
		s.validateDates(name)
	case Severity:
		if value != "" && !severityPattern.MatchString(value) {
			s.errors[Severity] = MsgSeverityUpper
		} else {
			delete(s.errors, Severity)
		}
	case Source:
		if value != "" && !sourcePattern.MatchString(value) {
			s.errors[Source] = MsgSourceLowercase
		} else {
			delete(s.errors, Source)
		}
	}
}

// validateDates checks the changed date and reconciles the range error.
// A range violation is reported on the field that was just changed and the
// complementary range message is removed, so exactly one key carries it.
func (s *Store) validateDates(changed Field) {
	other := EndDate
	rangeMsg, otherRangeMsg := MsgStartAfterEnd, MsgEndBeforeStart
	if changed == EndDate {
		other = StartDate
		rangeMsg, otherRangeMsg = MsgEndBeforeStart, MsgStartAfterEnd
	}

	// The other side's range error is re-derived below.
	if s.errors[other] == otherRangeMsg {
		delete(s.errors, other)
	}

	value := s.state.get(changed)
	if value == "" {
		delete(s.errors, changed)
		return
	}

	t, err := time.Parse(format.ISODateLayout, value)
	if err != nil {
		s.errors[changed] = MsgDateFormat
		return
	}

	otherValue := s.state.get(other)
	ot, otherErr := time.Parse(format.ISODateLayout, otherValue)
	if otherValue == "" || otherErr != nil {
		delete(s.errors, changed)
		return
	}

	start, end := t, ot
	if changed == EndDate {
		start, end = ot, t
	}
	if start.After(end) {
		s.errors[changed] = rangeMsg
	} else {
		delete(s.errors, changed)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{State: s.state, Errors: s.errors.clone()}
}

func (s *Store) subscriberList() []func(Snapshot) {
	subs := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(Snapshot{State: snap.State, Errors: snap.Errors.clone()})
	}
}
