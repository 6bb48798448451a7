package repository

import "errors"

var (
	ErrBookingNotFound      = errors.New("booking not found")
	ErrAlreadyConfirmed     = errors.New("booking already confirmed by this transaction")
	ErrBookingAlreadyPaid   = errors.New("booking already paid by another transaction")
	ErrNotificationNotFound = errors.New("payment notification not found")
)
