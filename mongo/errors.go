package mongo

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned by queries made while a handle is not connected.
	ErrNotConnected = errors.New("database handle is not connected")
	// ErrClosed is returned by Connect on a manager that has been shut down.
	ErrClosed = errors.New("database manager is closed")
)

// ConnectionError is returned when a handle could not be opened or did not answer a ping.
type ConnectionError struct {
	Handle string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s handle failed to connect: %v", e.Handle, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// CloseError describes a handle that failed to close. It is logged, never returned.
type CloseError struct {
	Handle string
	Err    error
}

func (e *CloseError) Error() string {
	return fmt.Sprintf("%s handle failed to close: %v", e.Handle, e.Err)
}

func (e *CloseError) Unwrap() error {
	return e.Err
}
