// Package consumer implements a HID consumer control interface for
// media keys: volume, playback transport and similar controls.
package consumer

import (
	"encoding/binary"

	"github.com/dlkj/hidra/hidclass"
	"github.com/dlkj/hidra/usb"
	"github.com/dlkj/hidra/usb/hid"
)

// Common consumer page usages.
const (
	UsageNone       uint16 = 0x00
	UsageScanNext   uint16 = 0xB5
	UsageScanPrev   uint16 = 0xB6
	UsageStop       uint16 = 0xB7
	UsagePlayPause  uint16 = 0xCD
	UsageMute       uint16 = 0xE2
	UsageVolumeUp   uint16 = 0xE9
	UsageVolumeDown uint16 = 0xEA
)

// ReportSize is the size of the consumer control input report.
const ReportSize = 8

// maxUsage is the highest reportable consumer usage (AC Distribute
// Vertically, the top of the consumer page range used here).
const maxUsage = 0x029C

// ReportDescriptor reports four simultaneous consumer usages as 16
// bit array items. Report: four little endian usage codes, zero
// meaning empty slot.
var ReportDescriptor = hid.Report{Items: []hid.Item{
	hid.UsagePage{Page: hid.UsagePageConsumer},
	hid.Usage{Usage: hid.UsageConsumerControl},
	hid.Collection{Kind: hid.CollectionApplication, Items: []hid.Item{
		hid.UsageMinimum{Min: 0},
		hid.UsageMaximum{Max: maxUsage},
		hid.LogicalMinimum{Min: 0},
		hid.LogicalMaximum{Max: maxUsage},
		hid.ReportSize{Bits: 16},
		hid.ReportCount{Count: 4},
		hid.Input{Flags: 0},
	}},
}}.MustBytes()

// Report is the consumer control input report: four usage slots.
type Report struct {
	Usages [4]uint16
}

// NewReport builds a Report from the given usages. Usages beyond the
// fourth are dropped.
func NewReport(usages ...uint16) Report {
	var r Report
	copy(r.Usages[:], usages)
	return r
}

// Bytes encodes the 8 byte wire form.
func (r Report) Bytes() []byte {
	b := make([]byte, ReportSize)
	for i, u := range r.Usages {
		binary.LittleEndian.PutUint16(b[i*2:], u)
	}
	return b
}

// Control is a consumer control interface.
type Control struct {
	*hidclass.RawInterface
}

var _ hidclass.Interface = (*Control)(nil)

// NewControl claims bus resources and returns the live control.
// description may be empty.
func NewControl(alloc *usb.Allocator, description string) *Control {
	return &Control{RawInterface: hidclass.NewRaw(alloc, rawConfig(description))}
}

// ControlConfig describes a consumer control for group allocation.
func ControlConfig(description string) hidclass.Config {
	return hidclass.WrapConfig{
		Inner: rawConfig(description),
		New: func(inner hidclass.Interface) hidclass.Interface {
			return &Control{RawInterface: inner.(*hidclass.RawInterface)}
		},
	}
}

func rawConfig(description string) hidclass.RawConfig {
	return hidclass.RawConfig{
		ReportDescriptor: ReportDescriptor,
		Description:      description,
		InMaxPacket:      ReportSize,
		InInterval:       50,
	}
}

// WriteUsages stages an input report with the given usages active.
// Write an empty report to release them.
func (c *Control) WriteUsages(usages ...uint16) error {
	return c.WriteReport(NewReport(usages...).Bytes())
}
