package keyboard

import (
	"github.com/dlkj/hidra/hidclass"
	"github.com/dlkj/hidra/usb"
	"github.com/dlkj/hidra/usb/hid"
)

// NKROReportSize is the size of the NKRO input report: modifiers,
// a reserved byte and a 256 bit key bitmap.
const NKROReportSize = 34

// NKROReportDescriptor reports every keycode as its own bit, so any
// number of keys can be down at once. The LED output report matches
// the boot keyboard's.
var NKROReportDescriptor = hid.Report{Items: []hid.Item{
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
		hid.UsagePage{Page: hid.UsagePageLEDs},
		hid.UsageMinimum{Min: 1},
		hid.UsageMaximum{Max: 5},
		hid.ReportCount{Count: 5},
		hid.ReportSize{Bits: 1},
		hid.Output{Flags: hid.MainVar},
		hid.ReportCount{Count: 1},
		hid.ReportSize{Bits: 3},
		hid.Output{Flags: hid.MainConst},
		hid.UsagePage{Page: hid.UsagePageKeyboard},
		hid.UsageMinimum{Min: 0},
		hid.UsageMaximum{Max: 0xFF},
		hid.LogicalMinimum{Min: 0},
		hid.LogicalMaximum{Max: 1},
		hid.ReportSize{Bits: 1},
		hid.ReportCount{Count: 256},
		hid.Input{Flags: hid.MainVar},
	}},
}}.MustBytes()

// InputState is the client-facing state of an NKRO keyboard: modifier
// bits plus one bit per keycode.
type InputState struct {
	Modifiers uint8
	Keys      [32]uint8
}

// PressKey returns an InputState with the given keys down.
func PressKey(keys ...uint8) InputState {
	return PressKeyWithMod(0, keys...)
}

// PressKeyWithMod returns an InputState with modifiers and keys down.
func PressKeyWithMod(modifiers uint8, keys ...uint8) InputState {
	s := InputState{Modifiers: modifiers}
	for _, k := range keys {
		s.Keys[k/8] |= 1 << (k % 8)
	}
	return s
}

// Press marks a key down.
func (s *InputState) Press(key uint8) { s.Keys[key/8] |= 1 << (key % 8) }

// Release marks a key up.
func (s *InputState) Release(key uint8) { s.Keys[key/8] &^= 1 << (key % 8) }

// IsPressed reports whether a key is down.
func (s *InputState) IsPressed(key uint8) bool {
	return s.Keys[key/8]&(1<<(key%8)) != 0
}

// BuildReport encodes the 34 byte wire form:
// [modifiers, 0, bitmap0..bitmap31].
func (s InputState) BuildReport() []byte {
	b := make([]byte, NKROReportSize)
	b[0] = s.Modifiers
	copy(b[2:], s.Keys[:])
	return b
}

// NKRO is an n-key rollover keyboard interface.
type NKRO struct {
	*hidclass.RawInterface
	leds uint8
}

var _ hidclass.Interface = (*NKRO)(nil)

// NewNKRO claims bus resources and returns the live keyboard.
func NewNKRO(alloc *usb.Allocator, description string) *NKRO {
	return &NKRO{RawInterface: hidclass.NewRaw(alloc, nkroRawConfig(description))}
}

// NKROConfig describes an NKRO keyboard for group allocation.
func NKROConfig(description string) hidclass.Config {
	return hidclass.WrapConfig{
		Inner: nkroRawConfig(description),
		New: func(inner hidclass.Interface) hidclass.Interface {
			return &NKRO{RawInterface: inner.(*hidclass.RawInterface)}
		},
	}
}

func nkroRawConfig(description string) hidclass.RawConfig {
	return hidclass.RawConfig{
		ReportDescriptor: NKROReportDescriptor,
		Description:      description,
		IdleDefault:      0,
		InMaxPacket:      NKROReportSize,
		InInterval:       1,
	}
}

// WriteState stages an input report for the given state.
func (k *NKRO) WriteState(s InputState) error {
	return k.WriteReport(s.BuildReport())
}

// SetReport accepts the 1 byte LED output report.
func (k *NKRO) SetReport(data []byte) error {
	if len(data) != 1 {
		return hidclass.ErrBadReport
	}
	k.leds = data[0]
	return nil
}

// LEDs returns the LED state last set by the host.
func (k *NKRO) LEDs() uint8 { return k.leds }

// Reset clears the LED state along with the interface state.
func (k *NKRO) Reset() {
	k.RawInterface.Reset()
	k.leds = 0
}
