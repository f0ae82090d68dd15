package services

import "fmt"

// InvalidInputError reports a listing field that makes analysis impossible.
type InvalidInputError struct {
	ListingID string
	Field     string
	Value     any
	Reason    string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("listing %q: invalid %s (%v): %s", e.ListingID, e.Field, e.Value, e.Reason)
}
