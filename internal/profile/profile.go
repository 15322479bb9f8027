// Package profile loads declarative device profiles and turns them
// into interface configurations for allocation.
//
// A profile lists the interfaces of one composite HID device plus the
// device-level identifiers. The file format is chosen by extension:
// YAML, TOML or JSON.
package profile

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dlkj/hidra/device/consumer"
	"github.com/dlkj/hidra/device/keyboard"
	"github.com/dlkj/hidra/device/mouse"
	"github.com/dlkj/hidra/hidclass"
	"github.com/dlkj/hidra/usb"

	toml "github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// Interface types accepted in profiles.
const (
	TypeKeyboard     = "keyboard"
	TypeNKROKeyboard = "nkro-keyboard"
	TypeMouse        = "mouse"
	TypeWheelMouse   = "wheel-mouse"
	TypeConsumer     = "consumer"
	TypeRaw          = "raw"
)

// Device descriptor defaults when the profile leaves the IDs unset
// (the pid.codes test PID under the open source VID).
const (
	defaultVendorID  = 0x1209
	defaultProductID = 0x0001
)

// Interface is one interface entry of a profile.
type Interface struct {
	Type        string `json:"type" yaml:"type" toml:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`

	// Protocol selects the managed protocol mode: "default",
	// "force-boot" or "force-report". Setting it wraps the interface
	// in a ManagedInterface; empty leaves the interface unwrapped.
	Protocol string `json:"protocol,omitempty" yaml:"protocol,omitempty" toml:"protocol,omitempty"`

	// Fields for type "raw". Descriptor is the report descriptor as a
	// hex string; whitespace is ignored.
	Descriptor   string `json:"descriptor,omitempty" yaml:"descriptor,omitempty" toml:"descriptor,omitempty"`
	Idle         uint8  `json:"idle,omitempty" yaml:"idle,omitempty" toml:"idle,omitempty"`
	InMaxPacket  uint16 `json:"in_max_packet,omitempty" yaml:"in_max_packet,omitempty" toml:"in_max_packet,omitempty"`
	InInterval   uint8  `json:"in_interval,omitempty" yaml:"in_interval,omitempty" toml:"in_interval,omitempty"`
	OutMaxPacket uint16 `json:"out_max_packet,omitempty" yaml:"out_max_packet,omitempty" toml:"out_max_packet,omitempty"`
	OutInterval  uint8  `json:"out_interval,omitempty" yaml:"out_interval,omitempty" toml:"out_interval,omitempty"`
}

// Profile describes a composite HID device.
type Profile struct {
	Name         string      `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	VendorID     uint16      `json:"vendor_id,omitempty" yaml:"vendor_id,omitempty" toml:"vendor_id,omitempty"`
	ProductID    uint16      `json:"product_id,omitempty" yaml:"product_id,omitempty" toml:"product_id,omitempty"`
	Manufacturer string      `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty" toml:"manufacturer,omitempty"`
	Product      string      `json:"product,omitempty" yaml:"product,omitempty" toml:"product,omitempty"`
	Serial       string      `json:"serial,omitempty" yaml:"serial,omitempty" toml:"serial,omitempty"`
	Interfaces   []Interface `json:"interfaces" yaml:"interfaces" toml:"interfaces"`
}

// Load reads and parses the profile at path. The format is chosen by
// file extension: .yaml/.yml, .toml or .json.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var p Profile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &p)
	case ".toml":
		err = toml.Unmarshal(data, &p)
	case ".json":
		err = json.Unmarshal(data, &p)
	default:
		return nil, fmt.Errorf("profile: unsupported format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("profile: parse %s: %w", path, err)
	}
	if len(p.Interfaces) == 0 {
		return nil, fmt.Errorf("profile: %s declares no interfaces", path)
	}
	return &p, nil
}

// Configs maps the profile's interface entries to allocation configs,
// in declaration order.
func (p *Profile) Configs() ([]hidclass.Config, error) {
	configs := make([]hidclass.Config, 0, len(p.Interfaces))
	for i, ifc := range p.Interfaces {
		cfg, err := ifc.config()
		if err != nil {
			return nil, fmt.Errorf("profile: interface %d: %w", i, err)
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

// DeviceDescriptor builds the device descriptor for this profile.
// Manufacturer, product and serial strings use the reserved indices
// 1..3 when present; DeviceString serves them.
func (p *Profile) DeviceDescriptor() usb.DeviceDescriptor {
	vid, pid := p.VendorID, p.ProductID
	if vid == 0 {
		vid = defaultVendorID
	}
	if pid == 0 {
		pid = defaultProductID
	}
	d := usb.DeviceDescriptor{
		BcdUSB:             0x0200,
		BMaxPacketSize0:    64,
		IDVendor:           vid,
		IDProduct:          pid,
		BcdDevice:          0x0100,
		BNumConfigurations: 1,
	}
	if p.Manufacturer != "" {
		d.IManufacturer = 1
	}
	if p.Product != "" {
		d.IProduct = 2
	}
	if p.Serial != "" {
		d.ISerialNumber = 3
	}
	return d
}

// DeviceString serves the device-level string indices 1..3.
func (p *Profile) DeviceString(index usb.StringIndex) (string, bool) {
	switch index {
	case 1:
		if p.Manufacturer != "" {
			return p.Manufacturer, true
		}
	case 2:
		if p.Product != "" {
			return p.Product, true
		}
	case 3:
		if p.Serial != "" {
			return p.Serial, true
		}
	}
	return "", false
}

func (ifc Interface) config() (hidclass.Config, error) {
	var cfg hidclass.Config
	switch ifc.Type {
	case TypeKeyboard:
		cfg = keyboard.BootConfig(ifc.Description)
	case TypeNKROKeyboard:
		cfg = keyboard.NKROConfig(ifc.Description)
	case TypeMouse:
		cfg = mouse.BootConfig(ifc.Description)
	case TypeWheelMouse:
		cfg = mouse.WheelConfig(ifc.Description)
	case TypeConsumer:
		cfg = consumer.ControlConfig(ifc.Description)
	case TypeRaw:
		raw, err := ifc.rawConfig()
		if err != nil {
			return nil, err
		}
		cfg = raw
	default:
		return nil, fmt.Errorf("unknown interface type %q", ifc.Type)
	}

	mode, wrap, err := parseProtocolMode(ifc.Protocol)
	if err != nil {
		return nil, err
	}
	if wrap {
		return hidclass.Managed(cfg, hidclass.ManagedConfig{Mode: mode}), nil
	}
	return cfg, nil
}

func (ifc Interface) rawConfig() (hidclass.RawConfig, error) {
	clean := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, ifc.Descriptor)

	desc, err := hex.DecodeString(clean)
	if err != nil {
		return hidclass.RawConfig{}, fmt.Errorf("bad descriptor hex: %w", err)
	}
	if len(desc) == 0 {
		return hidclass.RawConfig{}, errors.New("raw interface needs a descriptor")
	}

	return hidclass.RawConfig{
		ReportDescriptor: desc,
		Description:      ifc.Description,
		IdleDefault:      ifc.Idle,
		InMaxPacket:      ifc.InMaxPacket,
		InInterval:       ifc.InInterval,
		OutMaxPacket:     ifc.OutMaxPacket,
		OutInterval:      ifc.OutInterval,
	}, nil
}

func parseProtocolMode(s string) (hidclass.ProtocolMode, bool, error) {
	switch s {
	case "":
		return hidclass.ProtocolModeDefault, false, nil
	case "default":
		return hidclass.ProtocolModeDefault, true, nil
	case "force-boot":
		return hidclass.ProtocolModeForceBoot, true, nil
	case "force-report":
		return hidclass.ProtocolModeForceReport, true, nil
	default:
		return 0, false, fmt.Errorf("unknown protocol mode %q", s)
	}
}
