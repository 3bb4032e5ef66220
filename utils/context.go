package utils

import (
	"context"
	"errors"
	"strings"
)

// IsContextCanceled reports whether err was caused by context cancellation.
func IsContextCanceled(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return true
	}

	return strings.Contains(err.Error(), "context canceled")
}

// IsClientDisconnect reports whether err looks like a client hangup.
func IsClientDisconnect(err error) bool {
	return IsContextCanceled(err)
}
