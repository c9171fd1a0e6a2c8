package domain

import "errors"

// ErrRunNotFound is returned when a run ID has no saved checkpoint.
var ErrRunNotFound = errors.New("run not found")

// ErrOracleFailed is returned when the induction solver cannot be run or exits abnormally.
var ErrOracleFailed = errors.New("induction oracle failed")

// ErrInvalidModel is returned when a transition model has the wrong shape or is not stochastic.
var ErrInvalidModel = errors.New("invalid transition model")

// ErrInvalidTrajectory is returned when an expert trajectory cannot be decoded.
var ErrInvalidTrajectory = errors.New("invalid trajectory")

// ErrInvalidAction is returned when an action label is not of the form "move(F, T)".
var ErrInvalidAction = errors.New("invalid action")

// ErrUnknownState is returned when a state is not part of the state space.
var ErrUnknownState = errors.New("unknown state")
