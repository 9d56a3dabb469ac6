package models

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrDuplicateBid    = errors.New("duplicate bid")
)

// DuplicateBidMessage is the text returned to a bidder who already bid on a
// job. Existing clients match on it byte for byte, misspelling included.
const DuplicateBidMessage = "You have all ready bid on this job!"

// ParseID converts a hex path segment into the store's identifier type.
func ParseID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return id, nil
}
