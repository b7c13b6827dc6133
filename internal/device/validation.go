package device

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Validation patterns for embedded device fields. The network pattern
// requires the literal company network name; the IP pattern accepts
// dot-separated digit groups.
const (
	networkPattern = `MD Ltd\.`
	ipPattern      = `^([0-9]{1,3}\.){3}[0-9]{1,3}$`

	maxNameLength = 100
)

var (
	networkRegex = regexp.MustCompile(networkPattern)
	ipRegex      = regexp.MustCompile(ipPattern)
)

// Validate performs validation on a device: non-blank id and name, plus
// kind-specific field checks.
func Validate(d *Device) error {
	if d == nil {
		return ErrInvalidDevice
	}

	if isBlank(d.ID) {
		return fmt.Errorf("%w: id cannot be empty", ErrInvalidDevice)
	}
	if err := ValidateName(d.Name); err != nil {
		return err
	}

	switch det := d.Details.(type) {
	case *PersonalComputer:
		// OS is optional at rest; it only gates power-on.
	case *EmbeddedDevice:
		if err := ValidateIP(det.IP); err != nil {
			return err
		}
		if err := ValidateNetworkName(det.NetworkName); err != nil {
			return err
		}
	case *Smartwatch:
		if det.Power < 0 || det.Power > 100 {
			return fmt.Errorf("%w: %d", ErrInvalidPower, det.Power)
		}
	}

	return nil
}

// ValidateName checks if a device name is valid.
func ValidateName(name string) error {
	if isBlank(name) {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidDevice)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidDevice, maxNameLength)
	}
	return nil
}

// ValidateIP checks an embedded device IP address against the accepted
// dotted-quad pattern.
func ValidateIP(ip string) error {
	if !ipRegex.MatchString(ip) {
		return fmt.Errorf("%w: %q", ErrInvalidIP, ip)
	}
	return nil
}

// ValidateNetworkName checks that a network name belongs to the company
// network. The name must contain the literal "MD Ltd." substring.
func ValidateNetworkName(name string) error {
	if !networkRegex.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidNetwork, name)
	}
	return nil
}

// isBlank reports whether a string is empty or whitespace-only.
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// GenerateID creates a new UUID for a device.
func GenerateID() string {
	return uuid.New().String()
}
