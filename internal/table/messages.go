package table

// messages.go maps internal errors to user-friendly messages with
// stable codes. Users can quote the code to support staff for faster
// diagnosis.
//
//	VAL001 - Non-numeric age on a pending edit
//	COL001 - Duplicate column key on add
//	STORE001 - Snapshot could not be read (defaults were used)
//	STORE002 - Snapshot could not be written
//	GEN001 - Anything unrecognized

import (
	"errors"
	"strings"
)

// UserMessage is a user-facing rendering of an internal error.
type UserMessage struct {
	Code    string
	Message string
	Action  string
}

// MapError converts an internal error into a UserMessage. The technical
// error should still be logged server-side; this message is what the
// client sees.
func MapError(err error) UserMessage {
	switch {
	case errors.Is(err, ErrInvalidAge):
		return UserMessage{
			Code:    "VAL001",
			Message: "Age must be a number.",
			Action:  "Correct the age value and save again.",
		}
	case errors.Is(err, ErrDuplicateColumn):
		return UserMessage{
			Code:    "COL001",
			Message: "A column with this key already exists.",
			Action:  "Choose a different column key.",
		}
	case strings.Contains(err.Error(), "persist"):
		return UserMessage{
			Code:    "STORE002",
			Message: "Your change was applied but could not be saved.",
			Action:  "Retry the operation; if it keeps failing, check the storage backend.",
		}
	default:
		return UserMessage{
			Code:    "GEN001",
			Message: "Something went wrong processing the request.",
			Action:  "Try again; quote the error code if the problem persists.",
		}
	}
}
