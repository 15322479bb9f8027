// Package hidclass composes USB HID interfaces into a single device
// function. Interfaces are described by inert Config values, allocated
// once against the bus Allocator, collected into a Group and addressed
// by interface number when HID class control requests arrive.
//
// The package does no locking and starts no goroutines: it is written
// to run inside control transfer servicing, single threaded. Layers
// above it own any synchronization.
package hidclass

import (
	"fmt"

	"github.com/dlkj/hidra/usb"
)

// MaxReportSize is the largest report moved over the control pipe.
const MaxReportSize = 64

// Interface is one HID interface of a composite device function.
//
// Implementations own their protocol, idle and report state; the
// Group owning the interface is the only long-lived holder of it.
type Interface interface {
	// ID returns the bus-assigned interface number. It is stable for
	// the lifetime of the interface.
	ID() usb.InterfaceNumber

	// ReportDescriptor returns the HID report descriptor (0x22). The
	// returned bytes are fixed after construction.
	ReportDescriptor() []byte

	// WriteDescriptors emits the interface descriptor, the HID class
	// descriptor body and the endpoint descriptors into w. The first
	// writer failure is returned unchanged.
	WriteDescriptors(w DescriptorWriter) error

	// GetString resolves a string descriptor index owned by this
	// interface. Interfaces without strings return ("", false).
	GetString(index usb.StringIndex, langID uint16) (string, bool)

	// Reset restores protocol and idle state to power-up defaults and
	// drops buffered reports.
	Reset()

	// SetReport accepts a report sent by the host over the control
	// pipe (SET_REPORT data stage).
	SetReport(data []byte) error

	// GetReport fills buf with the report the host asked for
	// (GET_REPORT data stage) and returns its length.
	GetReport(buf []byte) (int, error)

	// GetReportAck signals that the report handed out by GetReport
	// reached the host.
	GetReportAck() error

	// SetIdle stores the idle rate for one report ID; ID 0 sets the
	// rate for all reports. GetIdle reads it back, falling back to
	// the global rate for unknown IDs. Rates are in 4 ms units.
	SetIdle(reportID, value uint8)
	GetIdle(reportID uint8) uint8

	// SetProtocol and GetProtocol track boot/report protocol
	// selection for boot-capable interfaces.
	SetProtocol(p usb.HIDProtocol)
	GetProtocol() usb.HIDProtocol
}

// DescriptorWriter receives the descriptor stream of a configuration.
// *usb.DescriptorWriter implements it.
type DescriptorWriter interface {
	// WriteDescriptor appends one descriptor; body holds everything
	// after the two header bytes.
	WriteDescriptor(descriptorType uint8, body []byte) error
}

// DescriptorBody builds the 7 byte HID class descriptor body for ifc:
// bcdHID 1.11, no country code, one subordinate report descriptor of
// len(ifc.ReportDescriptor()) bytes.
//
// Report descriptors are fixed at build time, so a descriptor longer
// than 65535 bytes is a programming error and panics rather than
// truncating the announced length.
func DescriptorBody(ifc Interface) [usb.HIDDescBodyLen]byte {
	n := len(ifc.ReportDescriptor())
	if n > usb.MaxReportDescLen {
		panic(fmt.Sprintf("hidclass: report descriptor too large: %d bytes", n))
	}
	return usb.HIDDescriptor{
		BcdHID:               usb.HIDVersion1_11,
		BCountryCode:         usb.CountryCodeNone,
		BNumDescriptors:      1,
		BClassDescriptorType: usb.ReportDescType,
		WDescriptorLength:    uint16(n),
	}.Body()
}
