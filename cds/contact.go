package cds

import (
	"github.com/google/uuid"

	"github.com/enclaved/discovery/e164"
)

// Contact is one discovered registration: a stable user identifier paired
// with the phone number it was queried under.
type Contact struct {
	UserID uuid.UUID
	Number e164.Number
}

// ContactSet accumulates discovered contacts across batches. Merging is
// idempotent: the same identifier/number pair collapses to one entry no
// matter how many batches report it.
type ContactSet map[Contact]struct{}

// NewContactSet builds a set from the given contacts.
func NewContactSet(contacts ...Contact) ContactSet {
	s := make(ContactSet, len(contacts))
	for _, c := range contacts {
		s.Add(c)
	}
	return s
}

// Add inserts a contact.
func (s ContactSet) Add(c Contact) {
	s[c] = struct{}{}
}

// Contains reports whether the exact identifier/number pair is present.
func (s ContactSet) Contains(c Contact) bool {
	_, ok := s[c]
	return ok
}

// Merge folds other into s.
func (s ContactSet) Merge(other ContactSet) {
	for c := range other {
		s[c] = struct{}{}
	}
}

// Len returns the number of distinct contacts.
func (s ContactSet) Len() int {
	return len(s)
}

// Slice returns the contacts in unspecified order.
func (s ContactSet) Slice() []Contact {
	out := make([]Contact, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	return out
}
