package device

import (
	"fmt"
	"strconv"
)

// Device represents a single inventory entry. Every device carries the base
// identity fields; the kind-specific fields live in Details.
type Device struct {
	// Identity
	ID   string `json:"id"`
	Name string `json:"name"`

	// Active reports whether the device is currently powered on.
	Active bool `json:"is_active"`

	// Version is the optimistic-concurrency token in relational mode.
	// Zero means absent (in-memory/file mode, or a device not yet persisted).
	Version int64 `json:"version,omitempty"`

	// Details holds the kind-specific fields. Nil for a bare base device
	// (a row with no matching subtype record).
	Details Details `json:"details,omitempty"`
}

// Details is the closed set of device kinds. Exactly three types implement
// it: PersonalComputer, EmbeddedDevice and Smartwatch.
type Details interface {
	Kind() Kind
	isDetails()
}

// Kind identifies one of the concrete device kinds.
type Kind string

// Kind constants.
const (
	KindPersonalComputer Kind = "personalcomputer"
	KindEmbeddedDevice   Kind = "embedded"
	KindSmartwatch       Kind = "smartwatch"
)

// AllKinds returns all valid kind values.
func AllKinds() []Kind {
	return []Kind{KindPersonalComputer, KindEmbeddedDevice, KindSmartwatch}
}

// ParseKind maps an API discriminator to a Kind. Accepted spellings:
// "personalcomputer"/"pc", "embedded"/"embeddeddevice", "smartwatch".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "personalcomputer", "pc":
		return KindPersonalComputer, nil
	case "embedded", "embeddeddevice":
		return KindEmbeddedDevice, nil
	case "smartwatch":
		return KindSmartwatch, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// PersonalComputer is a PC with an optional operating system. Powering on
// requires the OS to be set.
type PersonalComputer struct {
	OS string `json:"os,omitempty"`
}

// Kind returns KindPersonalComputer.
func (PersonalComputer) Kind() Kind { return KindPersonalComputer }

func (PersonalComputer) isDetails() {}

// EmbeddedDevice is a networked device identified by an IP address and the
// name of the network it belongs to. Both fields are pattern-validated.
type EmbeddedDevice struct {
	IP          string `json:"ip"`
	NetworkName string `json:"network_name"`
}

// Kind returns KindEmbeddedDevice.
func (EmbeddedDevice) Kind() Kind { return KindEmbeddedDevice }

func (EmbeddedDevice) isDetails() {}

// SetIP validates and assigns the IP address.
func (e *EmbeddedDevice) SetIP(ip string) error {
	if err := ValidateIP(ip); err != nil {
		return err
	}
	e.IP = ip
	return nil
}

// SetNetworkName validates and assigns the network name.
func (e *EmbeddedDevice) SetNetworkName(name string) error {
	if err := ValidateNetworkName(name); err != nil {
		return err
	}
	e.NetworkName = name
	return nil
}

// Smartwatch is a wearable with a battery percentage.
type Smartwatch struct {
	Power int `json:"power"`
}

// Kind returns KindSmartwatch.
func (Smartwatch) Kind() Kind { return KindSmartwatch }

func (Smartwatch) isDetails() {}

// ClampPower normalises a raw battery reading: values outside [0,100]
// collapse to 0.
func ClampPower(power int) int {
	if power < 0 || power > 100 {
		return 0
	}
	return power
}

// minPowerOn is the battery threshold below which a smartwatch refuses to
// power on. Each successful power-on drains the battery by powerOnCost.
const (
	minPowerOn  = 11
	powerOnCost = 10
)

// Notifier receives low-battery notifications raised during smartwatch
// power-on attempts. Implementations must be safe for concurrent use.
type Notifier interface {
	LowBattery(d *Device, power int)
}

// NoopNotifier discards all notifications.
type NoopNotifier struct{}

// LowBattery implements Notifier.
func (NoopNotifier) LowBattery(*Device, int) {}

// New constructs a validated device. The details' field constraints
// (IP pattern, network name, power clamp) are applied here; callers that
// build Details directly should run Validate themselves.
func New(id, name string, active bool, details Details) (*Device, error) {
	if sw, ok := details.(*Smartwatch); ok {
		sw.Power = ClampPower(sw.Power)
	}
	d := &Device{ID: id, Name: name, Active: active, Details: details}
	if err := Validate(d); err != nil {
		return nil, err
	}
	return d, nil
}

// PowerOn attempts to activate the device. The outcome depends on the kind:
//
//   - PersonalComputer: fails with ErrEmptySystem when no OS is set.
//   - EmbeddedDevice: attempts a network connect; a connect failure leaves
//     the device inactive and returns no error (check Active afterwards).
//   - Smartwatch: fails with ErrEmptyBattery below the threshold, notifying
//     the Notifier; success drains the battery.
//   - bare base device: always succeeds.
//
// A nil notifier is treated as NoopNotifier.
func (d *Device) PowerOn(notifier Notifier) error {
	if notifier == nil {
		notifier = NoopNotifier{}
	}

	switch det := d.Details.(type) {
	case *PersonalComputer:
		if isBlank(det.OS) {
			return ErrEmptySystem
		}
		d.Active = true
	case *EmbeddedDevice:
		if err := ValidateNetworkName(det.NetworkName); err != nil {
			// Connect failure is not surfaced to the caller; the device
			// simply stays off.
			d.Active = false
			return nil
		}
		d.Active = true
	case *Smartwatch:
		if det.Power <= minPowerOn {
			notifier.LowBattery(d, det.Power)
			return ErrEmptyBattery
		}
		det.Power -= powerOnCost
		d.Active = true
	case nil:
		d.Active = true
	default:
		return fmt.Errorf("%w: %T", ErrInvalidKind, d.Details)
	}

	return nil
}

// PowerOff deactivates the device. It never fails.
func (d *Device) PowerOff() {
	d.Active = false
}

// Edit overwrites this device's name, active flag and kind-specific fields
// from other, preserving ID and Version. The two devices must be the same
// kind; a mismatch returns ErrTypeMismatch and mutates nothing.
func (d *Device) Edit(other *Device) error {
	if other == nil || d.Kind() != other.Kind() {
		return ErrTypeMismatch
	}

	d.Name = other.Name
	d.Active = other.Active

	switch det := d.Details.(type) {
	case *PersonalComputer:
		src := other.Details.(*PersonalComputer)
		det.OS = src.OS
	case *EmbeddedDevice:
		src := other.Details.(*EmbeddedDevice)
		det.IP = src.IP
		det.NetworkName = src.NetworkName
	case *Smartwatch:
		src := other.Details.(*Smartwatch)
		det.Power = src.Power
	}

	return nil
}

// Kind returns the device's kind, or the empty Kind for a bare base device.
func (d *Device) Kind() Kind {
	if d.Details == nil {
		return ""
	}
	return d.Details.Kind()
}

// FileFormat renders the canonical comma-separated line for this device:
//
//	P,<name>,<active>[,<os>]
//	ED,<name>,<ip>,<networkName>
//	SW,<name>,<active>,<power>%
//
// A bare base device renders as <name>,<active>.
func (d *Device) FileFormat() string {
	base := d.Name + "," + strconv.FormatBool(d.Active)

	switch det := d.Details.(type) {
	case *PersonalComputer:
		if isBlank(det.OS) {
			return "P," + base
		}
		return "P," + base + "," + det.OS
	case *EmbeddedDevice:
		return "ED," + d.Name + "," + det.IP + "," + det.NetworkName
	case *Smartwatch:
		return "SW," + base + "," + strconv.Itoa(det.Power) + "%"
	}

	return base
}

// DisplayString renders a human-readable multi-line description, used by
// status notifications and the plain-text display endpoint.
func (d *Device) DisplayString() string {
	s := fmt.Sprintf("ID: %s\nName: %s\nActive: %t\n", d.ID, d.Name, d.Active)

	switch det := d.Details.(type) {
	case *PersonalComputer:
		s += fmt.Sprintf("OS: %s\n", det.OS)
	case *EmbeddedDevice:
		s += fmt.Sprintf("IP: %s\nNET: %s\n", det.IP, det.NetworkName)
	case *Smartwatch:
		s += fmt.Sprintf("Power: %d\n", det.Power)
	}

	return s
}

// Copy returns an independent copy of the device, including its details.
// Store and repository methods return copies so callers never share mutable
// state with the backing storage.
func (d *Device) Copy() *Device {
	if d == nil {
		return nil
	}

	cpy := *d
	switch det := d.Details.(type) {
	case *PersonalComputer:
		dc := *det
		cpy.Details = &dc
	case *EmbeddedDevice:
		dc := *det
		cpy.Details = &dc
	case *Smartwatch:
		dc := *det
		cpy.Details = &dc
	}

	return &cpy
}
