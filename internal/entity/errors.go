package entity

import (
	"errors"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrAlreadyFinal    = errors.New("order is in a final status")
	ErrShopMismatch    = errors.New("shop id mismatch")
	ErrAmountMismatch  = errors.New("amount mismatch")
	ErrSignature       = errors.New("signature verification failed")
)
