package message

import (
	"errors"

	apperrors "dfchat/pkg/errors"
)

var (
	// ErrUnavailable is returned by a check action whose collaborator is not
	// ready yet. The classification still stands.
	ErrUnavailable = apperrors.ErrUnavailable

	ErrAlreadyCancelled = errors.New("message already cancelled")
)
