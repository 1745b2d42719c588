package domain

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// Field bounds, counted in code points.
const (
	MaxTextLength        = 500
	MaxDescriptionLength = 2000
	MaxTagLength         = 50
	MaxTags              = 25
)

// DefaultUndoWindow is how long a soft-deleted item stays restorable.
const DefaultUndoWindow = 5 * time.Second

// Status is the closed set of item progress states.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// ParseStatus returns the Status named by s.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", invalid("status", "%q is not one of not_started, in_progress, completed", s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Toggled collapses any non-completed state to completed and completed to
// not_started. in_progress is not remembered.
func (s Status) Toggled() Status {
	if s == StatusCompleted {
		return StatusNotStarted
	}
	return StatusCompleted
}

// Priority is the closed set of item priorities.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority returns the Priority named by s.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", invalid("priority", "%q is not one of low, medium, high", s)
	}
	return p, nil
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Item is a single TODO entry. DeletedAt != nil marks a tombstone that is
// pending either restore or purge.
type Item struct {
	ID          int64
	ListID      int64
	Text        string
	Description *string
	Tags        []string
	Status      Status
	DueDate     *Date
	Priority    *Priority
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
	CreatedBy   string
}

// IsDeleted reports whether the item is tombstoned.
func (it Item) IsDeleted() bool { return it.DeletedAt != nil }

// Restorable reports whether a tombstoned item is still inside window at now.
// The boundary itself is inclusive.
func (it Item) Restorable(now time.Time, window time.Duration) bool {
	return it.DeletedAt != nil && now.Sub(*it.DeletedAt) <= window
}

// Purgeable reports whether a tombstoned item's window has strictly elapsed.
func (it Item) Purgeable(now time.Time, window time.Duration) bool {
	return it.DeletedAt != nil && now.Sub(*it.DeletedAt) > window
}

// Clone returns a deep copy; no pointer or slice is shared with it.
func (it Item) Clone() Item {
	c := it
	if it.Description != nil {
		d := *it.Description
		c.Description = &d
	}
	if it.DueDate != nil {
		d := *it.DueDate
		c.DueDate = &d
	}
	if it.Priority != nil {
		p := *it.Priority
		c.Priority = &p
	}
	if it.DeletedAt != nil {
		t := *it.DeletedAt
		c.DeletedAt = &t
	}
	c.Tags = slices.Clone(it.Tags)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return c
}

// NewItem carries the inputs of item creation.
type NewItem struct {
	ListID      int64
	Text        string
	CreatedBy   string
	Description *string
	Tags        []string
	Status      Status
	DueDate     *Date
	Priority    *Priority
}

// Validate checks every field of n.
func (n NewItem) Validate() error {
	if err := ValidateText(n.Text); err != nil {
		return err
	}
	if n.CreatedBy == "" {
		return invalid("created_by", "must not be empty")
	}
	if n.Description != nil {
		if err := ValidateDescription(*n.Description); err != nil {
			return err
		}
	}
	if err := ValidateTags(n.Tags); err != nil {
		return err
	}
	if n.Status != "" && !n.Status.Valid() {
		return invalid("status", "%q is not one of not_started, in_progress, completed", n.Status)
	}
	if n.Priority != nil && !n.Priority.Valid() {
		return invalid("priority", "%q is not one of low, medium, high", *n.Priority)
	}
	return nil
}

// Build returns the live item described by n, stamped with now.
// The caller is expected to have validated n.
func (n NewItem) Build(now time.Time) Item {
	it := Item{
		ListID:    n.ListID,
		Text:      n.Text,
		Tags:      slices.Clone(n.Tags),
		Status:    n.Status,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: n.CreatedBy,
	}
	if it.Status == "" {
		it.Status = StatusNotStarted
	}
	if it.Tags == nil {
		it.Tags = []string{}
	}
	if n.Description != nil && *n.Description != "" {
		d := *n.Description
		it.Description = &d
	}
	if n.DueDate != nil {
		d := *n.DueDate
		it.DueDate = &d
	}
	if n.Priority != nil {
		p := *n.Priority
		it.Priority = &p
	}
	return it
}

// ItemPatch is a partial update. Text is always applied; every other field
// is applied only when it is not Absent.
type ItemPatch struct {
	Text        string
	Description Field[string]
	Tags        Field[[]string]
	Status      Field[Status]
	DueDate     Field[Date]
	Priority    Field[Priority]
}

// Validate checks the text and every Set field.
func (p ItemPatch) Validate() error {
	if err := ValidateText(p.Text); err != nil {
		return err
	}
	if d, ok := p.Description.Get(); ok {
		if err := ValidateDescription(d); err != nil {
			return err
		}
	}
	if tags, ok := p.Tags.Get(); ok {
		if err := ValidateTags(tags); err != nil {
			return err
		}
	}
	if st, ok := p.Status.Get(); ok && !st.Valid() {
		return invalid("status", "%q is not one of not_started, in_progress, completed", st)
	}
	if pr, ok := p.Priority.Get(); ok && !pr.Valid() {
		return invalid("priority", "%q is not one of low, medium, high", pr)
	}
	return nil
}

// ApplyTo writes the patch into it. Null clears: description and dates and
// priority become nil, tags become empty, status falls back to not_started.
// An empty description also clears it.
func (p ItemPatch) ApplyTo(it *Item) {
	it.Text = p.Text

	if !p.Description.IsAbsent() {
		if d, ok := p.Description.Get(); ok && d != "" {
			it.Description = &d
		} else {
			it.Description = nil
		}
	}
	if !p.Tags.IsAbsent() {
		tags, _ := p.Tags.Get()
		it.Tags = slices.Clone(tags)
		if it.Tags == nil {
			it.Tags = []string{}
		}
	}
	if !p.Status.IsAbsent() {
		if st, ok := p.Status.Get(); ok {
			it.Status = st
		} else {
			it.Status = StatusNotStarted
		}
	}
	if !p.DueDate.IsAbsent() {
		it.DueDate = p.DueDate.Ptr()
	}
	if !p.Priority.IsAbsent() {
		it.Priority = p.Priority.Ptr()
	}
}

// ValidateText enforces 1..MaxTextLength code points, not all blank.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return invalid("text", "must not be empty")
	}
	if n := utf8.RuneCountInString(text); n > MaxTextLength {
		return invalid("text", "must be at most %d characters, got %d", MaxTextLength, n)
	}
	return nil
}

func ValidateDescription(d string) error {
	if n := utf8.RuneCountInString(d); n > MaxDescriptionLength {
		return invalid("description", "must be at most %d characters, got %d", MaxDescriptionLength, n)
	}
	return nil
}

func ValidateTags(tags []string) error {
	if len(tags) > MaxTags {
		return invalid("tags", "at most %d tags allowed, got %d", MaxTags, len(tags))
	}
	for i, tag := range tags {
		n := utf8.RuneCountInString(tag)
		if n == 0 || n > MaxTagLength {
			return invalid("tags", "tag %d must be 1..%d characters", i, MaxTagLength)
		}
	}
	return nil
}
