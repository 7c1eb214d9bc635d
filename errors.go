package fatboot

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

type FatbootError interface {
	error
	WithMessage(message string) FatbootError
	Wrap(err error) FatbootError
}

type baseFatbootError string

const rootError = baseFatbootError("")

var ErrFATMismatch = rootError.WithMessage("FAT copies do not match")
var ErrInvalidArgument = rootError.WithMessage("Invalid argument")
var ErrIOFailed = rootError.WithMessage("Input/output error")
var ErrNotFound = rootError.WithMessage("No such file or directory")
var ErrTruncatedInput = rootError.WithMessage("Truncated input")

func (e baseFatbootError) Error() string {
	return string(e)
}

func (e baseFatbootError) WithMessage(message string) FatbootError {
	return customFatbootError{
		message:       message,
		originalError: e,
	}
}

func (e baseFatbootError) Wrap(err error) FatbootError {
	return customFatbootError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

// -----------------------------------------------------------------------------

type customFatbootError struct {
	message       string
	originalError error
}

// Error implements the `error` object interface. When called, it returns a string
// describing the error.
func (e customFatbootError) Error() string {
	return e.message
}

func (e customFatbootError) WithMessage(message string) FatbootError {
	return customFatbootError{
		message:       fmt.Sprintf("%s: %s", e.message, message),
		originalError: e,
	}
}

func (e customFatbootError) Wrap(err error) FatbootError {
	return customFatbootError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

func (e customFatbootError) Unwrap() error {
	return e.originalError
}

// -----------------------------------------------------------------------------

// Region names the part of the image a read was attempting to fill.
type Region string

const (
	RegionBootSector = Region("boot_sector")
	RegionFATRegion  = Region("fat_region")
)

// TruncatedInputError is returned when fewer bytes were available than a fixed-size
// read required. No partial result accompanies it.
type TruncatedInputError struct {
	Region    Region
	Expected  uint
	Available uint
}

// NewTruncatedInputError creates a [TruncatedInputError] for the given region.
func NewTruncatedInputError(region Region, expected, available uint) *TruncatedInputError {
	return &TruncatedInputError{
		Region:    region,
		Expected:  expected,
		Available: available,
	}
}

func (e *TruncatedInputError) Error() string {
	return fmt.Sprintf(
		"%s: %s: expected %d bytes, %d available",
		ErrTruncatedInput.Error(),
		e.Region,
		e.Expected,
		e.Available,
	)
}

// Is makes errors.Is(err, ErrTruncatedInput) true for every TruncatedInputError.
func (e *TruncatedInputError) Is(target error) bool {
	return target == ErrTruncatedInput
}
