// Package keyboard implements HID keyboard interfaces: a boot
// protocol keyboard with the classic 8 byte report and an NKRO
// keyboard reporting every key as its own bit.
package keyboard

import (
	"github.com/dlkj/hidra/hidclass"
	"github.com/dlkj/hidra/usb"
	"github.com/dlkj/hidra/usb/hid"
)

// BootReportSize is the size of the boot keyboard input report.
const BootReportSize = 8

// BootReportDescriptor is the boot keyboard report descriptor
// (HID 1.11 appendix E.6). Report: [modifiers, reserved, key1..key6],
// output report: [LED bits].
var BootReportDescriptor = hid.Report{Items: []hid.Item{
	hid.UsagePage{Page: hid.UsagePageGenericDesktop},
	hid.Usage{Usage: hid.UsageKeyboard},
	hid.Collection{Kind: hid.CollectionApplication, Items: []hid.Item{
		hid.UsagePage{Page: hid.UsagePageKeyboard},
		hid.UsageMinimum{Min: 0xE0},
		hid.UsageMaximum{Max: 0xE7},
		hid.LogicalMinimum{Min: 0},
		hid.LogicalMaximum{Max: 1},
		hid.ReportSize{Bits: 1},
		hid.ReportCount{Count: 8},
		hid.Input{Flags: hid.MainVar},
		hid.ReportCount{Count: 1},
		hid.ReportSize{Bits: 8},
		hid.Input{Flags: hid.MainConst},
		hid.ReportCount{Count: 5},
		hid.ReportSize{Bits: 1},
		hid.UsagePage{Page: hid.UsagePageLEDs},
		hid.UsageMinimum{Min: 1},
		hid.UsageMaximum{Max: 5},
		hid.Output{Flags: hid.MainVar},
		hid.ReportCount{Count: 1},
		hid.ReportSize{Bits: 3},
		hid.Output{Flags: hid.MainConst},
		hid.ReportCount{Count: 6},
		hid.ReportSize{Bits: 8},
		hid.LogicalMinimum{Min: 0},
		hid.LogicalMaximum{Max: 101},
		hid.UsagePage{Page: hid.UsagePageKeyboard},
		hid.UsageMinimum{Min: 0},
		hid.UsageMaximum{Max: 101},
		hid.Input{Flags: 0},
	}},
}}.MustBytes()

// Report is the boot keyboard input report.
type Report struct {
	Modifiers uint8
	Keys      [6]uint8
}

// NewReport builds a Report from pressed keys. More than six keys is
// phantom state: every slot reports ErrorRollover, per boot protocol.
func NewReport(modifiers uint8, keys ...uint8) Report {
	r := Report{Modifiers: modifiers}
	if len(keys) > len(r.Keys) {
		for i := range r.Keys {
			r.Keys[i] = KeyErrorRollover
		}
		return r
	}
	copy(r.Keys[:], keys)
	return r
}

// Bytes encodes the 8 byte wire form: [modifiers, 0, key1..key6].
func (r Report) Bytes() []byte {
	b := make([]byte, BootReportSize)
	b[0] = r.Modifiers
	copy(b[2:], r.Keys[:])
	return b
}

// Boot is a boot subclass keyboard interface. The host's LED output
// report is intercepted and exposed through LEDs.
type Boot struct {
	*hidclass.RawInterface
	leds uint8
}

var _ hidclass.Interface = (*Boot)(nil)

// NewBoot claims bus resources and returns the live keyboard.
// description may be empty.
func NewBoot(alloc *usb.Allocator, description string) *Boot {
	return &Boot{RawInterface: hidclass.NewRaw(alloc, bootRawConfig(description))}
}

// BootConfig describes a boot keyboard for group allocation.
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
		Protocol:         usb.InterfaceProtocolKeyboard,
		IdleDefault:      125, // 500 ms, keyboard power-up default
		InMaxPacket:      8,
		InInterval:       10,
	}
}

// WriteKeys stages an input report for the given pressed keys.
func (k *Boot) WriteKeys(modifiers uint8, keys ...uint8) error {
	return k.WriteReport(NewReport(modifiers, keys...).Bytes())
}

// SetReport accepts the 1 byte LED output report.
func (k *Boot) SetReport(data []byte) error {
	if len(data) != 1 {
		return hidclass.ErrBadReport
	}
	k.leds = data[0]
	return nil
}

// LEDs returns the LED state last set by the host.
func (k *Boot) LEDs() uint8 { return k.leds }

// Reset clears the LED state along with the interface state.
func (k *Boot) Reset() {
	k.RawInterface.Reset()
	k.leds = 0
}
