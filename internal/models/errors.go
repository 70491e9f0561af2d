package models

import "errors"

// Custom errors
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateKey      = errors.New("duplicate key violation")
	ErrUnparseableDate   = errors.New("date field cannot be parsed as a date")
	ErrOutOfOrderSeries  = errors.New("series is not in ascending date order")
	ErrInsufficientData  = errors.New("series shorter than minimum training window")
	ErrSymbolRequired    = errors.New("symbol is required")
)
