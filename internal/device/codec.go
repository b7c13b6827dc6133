package device

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Logger defines the logging interface used by this package.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Codec parses and serialises the flat-file device format.
//
// The codec owns the sequential id counter: ids are never read from the
// file, they are assigned starting at 1 and incremented once per line whose
// kind tag is recognised. The counter lives for the lifetime of one Codec;
// constructing a fresh Codec is the only way to reset it.
//
// A Codec is not safe for concurrent use; the Store serialises access.
type Codec struct {
	nextID int
	logger Logger
}

// NewCodec creates a codec with its id counter at 1.
func NewCodec() *Codec {
	return &Codec{nextID: 1, logger: noopLogger{}}
}

// SetLogger sets the logger used for per-line parse diagnostics.
func (c *Codec) SetLogger(logger Logger) {
	c.logger = logger
}

// NextID returns the next id the codec would assign and advances the counter.
func (c *Codec) NextID() string {
	id := strconv.Itoa(c.nextID)
	c.nextID++
	return id
}

// Parse reads the flat-file format line by line. Lines whose kind tag is
// not recognised are skipped without consuming an id; recognised lines that
// fail field parsing are logged and skipped, and parsing continues. A bad
// line never aborts the load.
func (c *Codec) Parse(r io.Reader) ([]*Device, error) {
	var devices []*Device

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		d, ok := c.parseLine(line)
		if ok {
			devices = append(devices, d)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading device file: %w", err)
	}

	return devices, nil
}

// parseLine parses one line. The boolean result reports whether a device
// was produced; the id counter advances on every tag match, even when the
// remaining fields fail to parse.
func (c *Codec) parseLine(line string) (*Device, bool) {
	if strings.TrimSpace(line) == "" {
		return nil, false
	}

	fields := strings.Split(line, ",")
	tag := fields[0]

	// Tag dispatch is by substring and the order matters: "SW" first, then
	// "P", then "ED". Anything else is not a device line.
	var kind Kind
	switch {
	case strings.Contains(tag, "SW"):
		kind = KindSmartwatch
	case strings.Contains(tag, "P"):
		kind = KindPersonalComputer
	case strings.Contains(tag, "ED"):
		kind = KindEmbeddedDevice
	default:
		return nil, false
	}

	id := c.NextID()

	d, err := buildFromFields(id, kind, fields)
	if err != nil {
		c.logger.Warn("skipping unparseable device line", "line", line, "error", err)
		return nil, false
	}

	return d, true
}

// buildFromFields assembles a device from the split line fields.
//
// Field layouts:
//
//	SW: tag, name, active, power%   (trailing % stripped)
//	P:  tag, name, active [, os]
//	ED: tag, name, ip, networkName  (active is not stored; forced false)
func buildFromFields(id string, kind Kind, fields []string) (*Device, error) {
	switch kind {
	case KindSmartwatch:
		if len(fields) < 4 {
			return nil, fmt.Errorf("smartwatch line has %d fields, want 4", len(fields))
		}
		active, err := strconv.ParseBool(fields[2])
		if err != nil {
			return nil, fmt.Errorf("parsing active flag: %w", err)
		}
		power, err := strconv.Atoi(strings.TrimSuffix(fields[3], "%"))
		if err != nil {
			return nil, fmt.Errorf("parsing power: %w", err)
		}
		return New(id, fields[1], active, &Smartwatch{Power: power})

	case KindPersonalComputer:
		if len(fields) < 3 {
			return nil, fmt.Errorf("personal computer line has %d fields, want 3 or 4", len(fields))
		}
		active, err := strconv.ParseBool(fields[2])
		if err != nil {
			return nil, fmt.Errorf("parsing active flag: %w", err)
		}
		pc := &PersonalComputer{}
		if len(fields) >= 4 {
			pc.OS = fields[3]
		}
		return New(id, fields[1], active, pc)

	case KindEmbeddedDevice:
		if len(fields) < 4 {
			return nil, fmt.Errorf("embedded device line has %d fields, want 4", len(fields))
		}
		return New(id, fields[1], false, &EmbeddedDevice{
			IP:          fields[2],
			NetworkName: fields[3],
		})
	}

	return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
}

// Serialize writes one FileFormat line per device, in storage order.
func (c *Codec) Serialize(w io.Writer, devices []*Device) error {
	bw := bufio.NewWriter(w)
	for _, d := range devices {
		if _, err := bw.WriteString(d.FileFormat() + "\n"); err != nil {
			return fmt.Errorf("writing device line: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing device file: %w", err)
	}
	return nil
}

// LoadFile parses devices from a file. A missing file is not an error and
// yields an empty inventory.
func (c *Codec) LoadFile(path string) ([]*Device, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening device file: %w", err)
	}
	defer f.Close()

	return c.Parse(f)
}

// SaveFile truncates the target and writes the full inventory.
func (c *Codec) SaveFile(path string, devices []*Device) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating device file: %w", err)
	}

	if err := c.Serialize(f, devices); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing device file: %w", err)
	}
	return nil
}
