package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// ConnectivityError marks a transient backend failure (timeout,
// unreachable host, driver-level failure). It is the only error class
// the fallback facade recovers from.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s: backend unavailable: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// NotFoundError is a business error; it never triggers fallback.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ValidationError rejects caller-supplied data; it never triggers fallback.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ConflictError marks a state collision (e.g. a duplicate key); it never
// triggers fallback.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

func IsConnectivity(err error) bool {
	var ce *ConnectivityError
	return errors.As(err, &ce)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// classifyMongo maps a Mongo driver error into the taxonomy. Document
// misses are handled at the call sites where the entity and id are known;
// everything the driver reports that is not a recognizable business
// failure counts as connectivity so the facade can recover it.
func classifyMongo(op string, err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return &ConflictError{Reason: fmt.Sprintf("%s: duplicate key", op)}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.Is(err, mongo.ErrClientDisconnected) || mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return &ConnectivityError{Op: op, Err: err}
	}
	return &ConnectivityError{Op: op, Err: err}
}
