package domain

import (
	"errors"
	"fmt"
)

var (
	ErrFetchFailed  = errors.New("fetch failed")
	ErrStoreFailed  = errors.New("store failed")
	ErrNotifyFailed = errors.New("notify failed")

	ErrMissingWebhookURL = fmt.Errorf("%w: missing webhook url", ErrNotifyFailed)

	ErrPlayerNotFound         = errors.New("player not found")
	ErrTemporarilyUnavailable = errors.New("temporarily unavailable")
)
