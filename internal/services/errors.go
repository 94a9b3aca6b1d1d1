// Package services defines the business logic for authorization grants,
// the knowledge store, and answer resolution. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages is performed at the bot handler
// or HTTP handler layer.
package services

import "errors"

var (
	// ErrAnswerUnavailable indicates the external language model could not
	// produce an answer (network failure, bad status, malformed response).
	// Callers must never persist an answer obtained alongside this error.
	ErrAnswerUnavailable = errors.New("answer unavailable")

	// ErrEmptyQuestion is returned when a question is blank after trimming.
	ErrEmptyQuestion = errors.New("question is empty")
)
