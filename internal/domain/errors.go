package domain

import "errors"

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrPasswordMissMatch = errors.New("password mismatch")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrUnknown           = errors.New("unknown error")

	ErrInvalidAmount       = errors.New("invalid amount")
	ErrNotEnoughBalance    = errors.New("not enough balance")
	ErrRecipientNotFound   = errors.New("recipient not found")
	ErrSelfTransfer        = errors.New("transfer to self is not allowed")
	ErrOperationInProgress = errors.New("operation already in progress")
)
