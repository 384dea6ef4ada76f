package domain

import "errors"

// ErrDuplicatePlugin is returned when a plugin name is registered twice.
var ErrDuplicatePlugin = errors.New("plugin already registered")

// ErrInvalidPlugin is returned when a plugin cannot be registered (nil or unnamed).
var ErrInvalidPlugin = errors.New("invalid plugin")

// ErrNotInitialized is returned when a lifecycle phase is invoked before Init.
var ErrNotInitialized = errors.New("runtime not initialized")

// ErrAlreadyInitialized is returned when Init is called twice without Destroy.
var ErrAlreadyInitialized = errors.New("runtime already initialized")

// ErrPluginInitTimeout is returned when a plugin's init hook does not settle in time.
var ErrPluginInitTimeout = errors.New("plugin init timed out")

// ErrPluginInitFailed is returned when a plugin's init hook returns an error or panics.
var ErrPluginInitFailed = errors.New("plugin init failed")

// ErrReducerContract is returned when a reducer produces a nil slice.
var ErrReducerContract = errors.New("reducer contract violation")

// ErrWaitTimeout is returned by WaitFor when the event does not arrive in time.
var ErrWaitTimeout = errors.New("timed out waiting for event")

// ErrBusClosed is returned by WaitFor when the bus is closed while waiting.
var ErrBusClosed = errors.New("event bus closed")
