package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxListNameLength bounds List.Name in code points.
const MaxListNameLength = 255

// List is a named collection of items owned by exactly one user.
type List struct {
	ID        int64
	Name      string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnedBy reports whether userID owns the list.
func (l List) OwnedBy(userID string) bool {
	return userID != "" && l.OwnerID == userID
}

// NewList returns a list stamped with now. It validates name and owner.
func NewList(name, ownerID string, now time.Time) (List, error) {
	if err := ValidateListName(name); err != nil {
		return List{}, err
	}
	if ownerID == "" {
		return List{}, invalid("owner_id", "must not be empty")
	}
	return List{
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ValidateListName enforces 1..MaxListNameLength code points, not all blank.
func ValidateListName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("name", "must not be empty")
	}
	if n := utf8.RuneCountInString(name); n > MaxListNameLength {
		return invalid("name", "must be at most %d characters, got %d", MaxListNameLength, n)
	}
	return nil
}
