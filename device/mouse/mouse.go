// Package mouse implements HID mouse interfaces: a boot protocol
// mouse with 8 bit movement and a wheel mouse with 16 bit movement,
// a vertical wheel and a horizontal pan wheel.
package mouse

import (
	"encoding/binary"

	"github.com/dlkj/hidra/hidclass"
	"github.com/dlkj/hidra/usb"
	"github.com/dlkj/hidra/usb/hid"

	"golang.org/x/exp/constraints"
)

// Button bits shared by both report formats.
const (
	Btn_Left    uint8 = 1 << 0
	Btn_Right   uint8 = 1 << 1
	Btn_Middle  uint8 = 1 << 2
	Btn_Back    uint8 = 1 << 3
	Btn_Forward uint8 = 1 << 4
)

// BootReportSize is the size of the boot mouse input report.
const BootReportSize = 4

// BootReportDescriptor is a three button mouse with 8 bit relative
// movement. Report: [buttons, X, Y, wheel].
var BootReportDescriptor = hid.Report{Items: []hid.Item{
	hid.UsagePage{Page: hid.UsagePageGenericDesktop},
	hid.Usage{Usage: hid.UsageMouse},
	hid.Collection{Kind: hid.CollectionApplication, Items: []hid.Item{
		hid.Usage{Usage: hid.UsagePointer},
		hid.Collection{Kind: hid.CollectionPhysical, Items: []hid.Item{
			hid.UsagePage{Page: hid.UsagePageButton},
			hid.UsageMinimum{Min: 1},
			hid.UsageMaximum{Max: 3},
			hid.LogicalMinimum{Min: 0},
			hid.LogicalMaximum{Max: 1},
			hid.ReportCount{Count: 3},
			hid.ReportSize{Bits: 1},
			hid.Input{Flags: hid.MainVar},
			hid.ReportCount{Count: 1},
			hid.ReportSize{Bits: 5},
			hid.Input{Flags: hid.MainConst},
			hid.UsagePage{Page: hid.UsagePageGenericDesktop},
			hid.Usage{Usage: hid.UsageX},
			hid.Usage{Usage: hid.UsageY},
			hid.Usage{Usage: hid.UsageWheel},
			hid.LogicalMinimum{Min: -127},
			hid.LogicalMaximum{Max: 127},
			hid.ReportSize{Bits: 8},
			hid.ReportCount{Count: 3},
			hid.Input{Flags: hid.MainVar | hid.MainRel},
		}},
	}},
}}.MustBytes()

// WheelReportSize is the size of the wheel mouse input report.
const WheelReportSize = 9

// WheelReportDescriptor is an eight button mouse with 16 bit relative
// movement, a vertical wheel and an AC Pan horizontal wheel.
// Report: [buttons, X lo, X hi, Y lo, Y hi, wheel lo, wheel hi,
// pan lo, pan hi].
var WheelReportDescriptor = hid.Report{Items: []hid.Item{
	hid.UsagePage{Page: hid.UsagePageGenericDesktop},
	hid.Usage{Usage: hid.UsageMouse},
	hid.Collection{Kind: hid.CollectionApplication, Items: []hid.Item{
		hid.Usage{Usage: hid.UsagePointer},
		hid.Collection{Kind: hid.CollectionPhysical, Items: []hid.Item{
			hid.UsagePage{Page: hid.UsagePageButton},
			hid.UsageMinimum{Min: 1},
			hid.UsageMaximum{Max: 8},
			hid.LogicalMinimum{Min: 0},
			hid.LogicalMaximum{Max: 1},
			hid.ReportCount{Count: 8},
			hid.ReportSize{Bits: 1},
			hid.Input{Flags: hid.MainVar},
			hid.UsagePage{Page: hid.UsagePageGenericDesktop},
			hid.Usage{Usage: hid.UsageX},
			hid.Usage{Usage: hid.UsageY},
			hid.LogicalMinimum{Min: -32767},
			hid.LogicalMaximum{Max: 32767},
			hid.ReportSize{Bits: 16},
			hid.ReportCount{Count: 2},
			hid.Input{Flags: hid.MainVar | hid.MainRel},
			hid.Usage{Usage: hid.UsageWheel},
			hid.LogicalMinimum{Min: -32767},
			hid.LogicalMaximum{Max: 32767},
			hid.ReportSize{Bits: 16},
			hid.ReportCount{Count: 1},
			hid.Input{Flags: hid.MainVar | hid.MainRel},
			hid.UsagePage{Page: hid.UsagePageConsumer},
			hid.Usage{Usage: hid.UsageACPan},
			hid.LogicalMinimum{Min: -32767},
			hid.LogicalMaximum{Max: 32767},
			hid.ReportSize{Bits: 16},
			hid.ReportCount{Count: 1},
			hid.Input{Flags: hid.MainVar | hid.MainRel},
		}},
	}},
}}.MustBytes()

// Report is the boot mouse input report.
type Report struct {
	Buttons uint8
	X       int8
	Y       int8
	Wheel   int8
}

// Bytes encodes the 4 byte wire form: [buttons, X, Y, wheel].
func (r Report) Bytes() []byte {
	return []byte{r.Buttons, byte(r.X), byte(r.Y), byte(r.Wheel)}
}

// InputState is the client-facing state of a wheel mouse.
type InputState struct {
	Buttons uint8
	DX      int16
	DY      int16
	Pan     int16
	Wheel   int16
}

// Add accumulates relative movement into the state, saturating at the
// report's logical range so bursts between polls cannot wrap.
func (s *InputState) Add(dx, dy, wheel, pan int) {
	s.DX = int16(clamp(int(s.DX)+dx, -32767, 32767))
	s.DY = int16(clamp(int(s.DY)+dy, -32767, 32767))
	s.Wheel = int16(clamp(int(s.Wheel)+wheel, -32767, 32767))
	s.Pan = int16(clamp(int(s.Pan)+pan, -32767, 32767))
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// BuildReport encodes the 9 byte wire form.
func (s InputState) BuildReport() []byte {
	b := make([]byte, WheelReportSize)
	b[0] = s.Buttons
	binary.LittleEndian.PutUint16(b[1:3], uint16(s.DX))
	binary.LittleEndian.PutUint16(b[3:5], uint16(s.DY))
	binary.LittleEndian.PutUint16(b[5:7], uint16(s.Wheel))
	binary.LittleEndian.PutUint16(b[7:9], uint16(s.Pan))
	return b
}

// Boot is a boot subclass mouse interface.
type Boot struct {
	*hidclass.RawInterface
}

var _ hidclass.Interface = (*Boot)(nil)

// NewBoot claims bus resources and returns the live mouse.
// description may be empty.
func NewBoot(alloc *usb.Allocator, description string) *Boot {
	return &Boot{RawInterface: hidclass.NewRaw(alloc, bootRawConfig(description))}
}

// BootConfig describes a boot mouse for group allocation.
func BootConfig(description string) hidclass.Config {
	return hidclass.WrapConfig{
		Inner: bootRawConfig(description),
		New: func(inner hidclass.Interface) hidclass.Interface {
			return &Boot{RawInterface: inner.(*hidclass.RawInterface)}
		},
	}
}

func bootRawConfig(description string) hidclass.RawConfig {
	return hidclass.RawConfig{
		ReportDescriptor: BootReportDescriptor,
		Description:      description,
		SubClass:         usb.SubclassBoot,
		Protocol:         usb.InterfaceProtocolMouse,
		InMaxPacket:      BootReportSize,
		InInterval:       10,
	}
}

// WriteMove stages an input report for the given button and movement
// state.
func (m *Boot) WriteMove(buttons uint8, x, y, wheel int8) error {
	return m.WriteReport(Report{Buttons: buttons, X: x, Y: y, Wheel: wheel}.Bytes())
}

// Wheel is a report protocol mouse interface with 16 bit movement.
type Wheel struct {
	*hidclass.RawInterface
}

var _ hidclass.Interface = (*Wheel)(nil)

// NewWheel claims bus resources and returns the live mouse.
func NewWheel(alloc *usb.Allocator, description string) *Wheel {
	return &Wheel{RawInterface: hidclass.NewRaw(alloc, wheelRawConfig(description))}
}

// WheelConfig describes a wheel mouse for group allocation.
func WheelConfig(description string) hidclass.Config {
	return hidclass.WrapConfig{
		Inner: wheelRawConfig(description),
		New: func(inner hidclass.Interface) hidclass.Interface {
			return &Wheel{RawInterface: inner.(*hidclass.RawInterface)}
		},
	}
}

func wheelRawConfig(description string) hidclass.RawConfig {
	return hidclass.RawConfig{
		ReportDescriptor: WheelReportDescriptor,
		Description:      description,
		InMaxPacket:      WheelReportSize,
		InInterval:       1,
	}
}

// WriteState stages an input report for the given state.
func (m *Wheel) WriteState(s InputState) error {
	return m.WriteReport(s.BuildReport())
}
