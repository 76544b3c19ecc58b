package domain

import "errors"

var (
	// ErrNoTextDetected is returned when the submitted OCR text is empty or whitespace
	ErrNoTextDetected = errors.New("no text detected")

	// ErrTextTooLarge is returned when the submitted text exceeds the configured limit
	ErrTextTooLarge = errors.New("text exceeds maximum size")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrBatchTooLarge is returned when a batch holds more texts than allowed
	ErrBatchTooLarge = errors.New("batch exceeds maximum size")

	// ErrCacheMiss is returned when a record is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
