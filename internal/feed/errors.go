package feed

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/feedupload/internal/common"
)

var (
	// ErrNotFound means the record ID is no longer known to the service.
	ErrNotFound = common.ErrorNotFound

	// ErrUnexpectedStatus covers any status other than the one an operation expects.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrMissingField means a success response lacked a required field.
	ErrMissingField = errors.New("missing field in response")
)

// Operation names used in errors, logs and metrics labels.
const (
	OpCreateRecord     = "create_record"
	OpUploadCredential = "upload_credential"
	OpFetchRecord      = "fetch_record"
	OpFinalizeRecord   = "finalize_record"
)

// Error is the single failure type of the feed client.
type Error struct {
	Op         string
	StatusCode int // 0 for transport errors
	Body       string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("feed %s: %v (status %d): %s", e.Op, e.Err, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("feed %s: %v (status %d)", e.Op, e.Err, e.StatusCode)
	default:
		return fmt.Sprintf("feed %s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}
