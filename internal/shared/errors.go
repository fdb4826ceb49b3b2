package shared

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Ingestion failure kinds
	ErrAuth        = fmt.Errorf("authentication failed")
	ErrFetch       = fmt.Errorf("catalog request failed")
	ErrAsset       = fmt.Errorf("asset download failed")
	ErrPersistence = fmt.Errorf("persistence failed")

	// Content store errors
	ErrNotFound = fmt.Errorf("not found")

	// Run errors
	ErrRunInProgress = fmt.Errorf("an ingestion run is already in progress")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// ErrorKind classifies err into one of the ingestion failure kinds.
//
// The result is suitable for log fields and metric labels.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrFetch):
		return "fetch"
	case errors.Is(err, ErrAsset):
		return "asset"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	default:
		return "unknown"
	}
}
