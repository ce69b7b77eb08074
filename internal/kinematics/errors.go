package kinematics

import (
	"errors"
	"fmt"
)

var (
	// ErrContractViolation indicates the caller broke a solve precondition:
	// mismatched point and length counts, a non-positive length, or a
	// non-finite coordinate.
	ErrContractViolation = errors.New("kinematics: contract violation")

	// ErrOptionBounds indicates a solver option outside its valid range.
	ErrOptionBounds = errors.New("kinematics: solver option out of bounds")
)

// ContractError carries the operation and the broken precondition.
type ContractError struct {
	Op     string
	Reason string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrContractViolation, e.Op, e.Reason)
}

func (e *ContractError) Unwrap() error {
	return ErrContractViolation
}

func contractf(op, format string, args ...any) error {
	return &ContractError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
