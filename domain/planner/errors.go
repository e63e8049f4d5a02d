package planner

import (
	"errors"
	"fmt"
)

// Kind classifies a planning failure. Every kind is a caller contract violation.
type Kind int

const (
	KindEmptySelection Kind = iota + 1
	KindInactiveDestination
	KindInvalidPolicy
)

func (k Kind) String() string {
	switch k {
	case KindEmptySelection:
		return "empty_selection"
	case KindInactiveDestination:
		return "inactive_destination"
	case KindInvalidPolicy:
		return "invalid_policy"
	}
	return "unknown"
}

var (
	ErrEmptySelection      = errors.New("empty selection")
	ErrInactiveDestination = errors.New("inactive destination")
	ErrInvalidPolicy       = errors.New("invalid policy")
)

// Error is returned by Plan. Subject is "content" or "destinations" for
// KindEmptySelection, the destination id for KindInactiveDestination and
// a reason for KindInvalidPolicy.
type Error struct {
	Kind    Kind
	Subject string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindEmptySelection:
		return fmt.Sprintf("empty selection: no %s selected", e.Subject)
	case KindInactiveDestination:
		return fmt.Sprintf("inactive destination: %s", e.Subject)
	case KindInvalidPolicy:
		return fmt.Sprintf("invalid policy: %s", e.Subject)
	}
	return "planning failed: " + e.Subject
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrEmptySelection:
		return e.Kind == KindEmptySelection
	case ErrInactiveDestination:
		return e.Kind == KindInactiveDestination
	case ErrInvalidPolicy:
		return e.Kind == KindInvalidPolicy
	}
	return false
}

// CheckSelection reports an empty content list before an empty destination list
func CheckSelection(contentCount, destinationCount int) error {
	if contentCount == 0 {
		return &Error{Kind: KindEmptySelection, Subject: "content"}
	}
	if destinationCount == 0 {
		return &Error{Kind: KindEmptySelection, Subject: "destinations"}
	}
	return nil
}

func inactiveDestination(id string) error {
	return &Error{Kind: KindInactiveDestination, Subject: id}
}

func invalidPolicy(reason string) error {
	return &Error{Kind: KindInvalidPolicy, Subject: reason}
}
