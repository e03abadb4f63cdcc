package reactive

import "errors"

// ErrInvalidPath is returned when a path expression cannot be parsed.
var ErrInvalidPath = errors.New("rstate: invalid path")

// ErrPathNotFound is returned when a path names a key or index that does
// not exist in the state tree.
var ErrPathNotFound = errors.New("rstate: path not found")

// ErrNotContainer is returned when a path walks through a scalar value, or
// when an operation needs an array and finds something else.
var ErrNotContainer = errors.New("rstate: value is not an object or array")

// ErrIndexOutOfRange is returned by path helpers for negative or
// non-numeric array indexes.
var ErrIndexOutOfRange = errors.New("rstate: array index out of range")

// ErrSchedulerRunning is returned by Scheduler.Run when the loop is already
// running on another goroutine.
var ErrSchedulerRunning = errors.New("rstate: scheduler already running")

// ErrSchedulerStopped is returned by Scheduler.Post after Close.
var ErrSchedulerStopped = errors.New("rstate: scheduler stopped")
