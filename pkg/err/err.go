package errprocess

import (
	"errors"

	"talk_message_service/pkg/logger"
)

var (
	// ErrNotFound conversation, message or bucket is absent
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied mutation requested by a non owner
	ErrPermissionDenied = errors.New("permission denied")
)

// Set set err info
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return errors.New(errMsg)
}
