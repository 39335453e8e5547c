package validate

import (
	"errors"
	"fmt"
	"regexp"
)

// Errors.
var (
	ErrMissingParameters = errors.New("parameters not provided")
	ErrAddressMissing    = errors.New("address not provided")
	ErrInvalidAddress    = errors.New("invalid address")
)

// addressPattern is the strict 20-byte hex form; checksums are not verified.
var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// CheckParameters fails when fewer than count-1 positional arguments were
// supplied. count includes the command itself, so a command that needs one
// argument passes 2. hint is appended to the error message.
func CheckParameters(args []string, count int, hint string) error {
	if args == nil || len(args) < count-1 {
		if hint == "" {
			return ErrMissingParameters
		}
		return fmt.Errorf("%w. %s", ErrMissingParameters, hint)
	}
	return nil
}

// CheckAddress fails when address is empty or is not a 0x-prefixed 40 hex
// character string. label names the field in the error ("contract", "target").
func CheckAddress(label, address string) error {
	if address == "" {
		return fmt.Errorf("%s %w", label, ErrAddressMissing)
	}
	if !addressPattern.MatchString(address) {
		return fmt.Errorf("%w provided for %s: %q", ErrInvalidAddress, label, address)
	}
	return nil
}
