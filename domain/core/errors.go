package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Probing errors
	ErrSchemaProbe = errors.New("schema probe failed")
	ErrEmptyColumn = fmt.Errorf("%w: column has no values", ErrSchemaProbe)

	// Statistic errors
	ErrInsufficientData   = errors.New("insufficient data for analysis")
	ErrUndefinedStatistic = errors.New("statistic undefined for this data")
	ErrUnsupportedType    = errors.New("unsupported column type for this method")

	// Boundary errors
	ErrDatasetAccess = errors.New("dataset access failed")
	ErrInvalidConfig = errors.New("invalid analysis configuration")

	// Cache errors
	ErrResultNotFound = errors.New("analysis result not found")
)

// Error constructors with context
func NewEmptyColumnError(column string) error {
	return fmt.Errorf("%w: %s", ErrEmptyColumn, column)
}

func NewInsufficientDataError(column string, have, want int) error {
	return fmt.Errorf("%w: column %s has %d values, need at least %d", ErrInsufficientData, column, have, want)
}

func NewUndefinedStatisticError(column, statistic, reason string) error {
	return fmt.Errorf("%w: %s on column %s (%s)", ErrUndefinedStatistic, statistic, column, reason)
}

func NewUnsupportedTypeError(column, method string) error {
	return fmt.Errorf("%w: %s requested on column %s", ErrUnsupportedType, method, column)
}

func NewDatasetAccessError(reason string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDatasetAccess, reason, err)
	}
	return fmt.Errorf("%w: %s", ErrDatasetAccess, reason)
}

func NewConfigError(field, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfig, field, reason)
}

// Error checking helpers
func IsSchemaProbeError(err error) bool {
	return errors.Is(err, ErrSchemaProbe)
}

func IsInsufficientDataError(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

func IsUndefinedStatisticError(err error) bool {
	return errors.Is(err, ErrUndefinedStatistic)
}

// IsFatal reports whether an error must abort an entire analysis run.
// Only dataset access failures are fatal; every other class is recorded
// against its column or pair and siblings continue.
func IsFatal(err error) bool {
	return errors.Is(err, ErrDatasetAccess)
}
