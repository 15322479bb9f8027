package hidclass

import (
	"fmt"

	"github.com/dlkj/hidra/usb"
)

// Idle rates are tracked per report ID in a small fixed table; rates
// for further IDs fall back to the global rate.
const maxIdleReports = 8

type idleRate struct {
	reportID uint8
	value    uint8
}

// RawConfig describes a plain HID interface: one report descriptor, an
// interrupt IN endpoint and optionally an interrupt OUT endpoint.
// Every shipped device type builds on it; it also serves as the
// vendor-defined escape hatch.
type RawConfig struct {
	// ReportDescriptor is the HID report descriptor (0x22) announced
	// by the interface. Must not exceed usb.MaxReportDescLen bytes.
	ReportDescriptor []byte

	// Description, when set, claims a string index and is served for
	// it by GetString.
	Description string

	// SubClass and Protocol fill bInterfaceSubClass and
	// bInterfaceProtocol (boot interface support).
	SubClass uint8
	Protocol uint8

	// IdleDefault is the power-up global idle rate in 4 ms units.
	IdleDefault uint8

	// InMaxPacket and InInterval configure the interrupt IN endpoint.
	// Zero values default to 64 bytes and 10 frames.
	InMaxPacket uint16
	InInterval  uint8

	// OutMaxPacket, when nonzero, adds an interrupt OUT endpoint.
	OutMaxPacket uint16
	OutInterval  uint8
}

func (c RawConfig) Allocate(alloc *usb.Allocator) Interface {
	return NewRaw(alloc, c)
}

var _ Config = RawConfig{}

// RawInterface is the allocated form of RawConfig. The device side
// stages host-bound reports with WriteReport and drains host-sent
// reports with ReadReport; the host side arrives through the
// Interface methods.
type RawInterface struct {
	id               usb.InterfaceNumber
	stringIndex      usb.StringIndex
	description      string
	reportDescriptor []byte
	subclass         uint8
	protocol         uint8
	idleDefault      uint8

	epIn  usb.Endpoint
	epOut usb.Endpoint

	hidProtocol usb.HIDProtocol
	globalIdle  uint8
	idleRates   [maxIdleReports]idleRate
	numIdle     int

	inReport  [MaxReportSize]byte
	inLen     int
	inPending bool

	outReport  [MaxReportSize]byte
	outLen     int
	outPending bool
}

var _ Interface = (*RawInterface)(nil)

// NewRaw claims bus resources for cfg and returns the live interface.
// Resources are claimed in a fixed order: interface number, string
// index (only when Description is set), IN endpoint, OUT endpoint.
func NewRaw(alloc *usb.Allocator, cfg RawConfig) *RawInterface {
	if len(cfg.ReportDescriptor) > usb.MaxReportDescLen {
		panic(fmt.Sprintf("hidclass: report descriptor too large: %d bytes", len(cfg.ReportDescriptor)))
	}

	inMax := cfg.InMaxPacket
	if inMax == 0 {
		inMax = 64
	}
	inInterval := cfg.InInterval
	if inInterval == 0 {
		inInterval = 10
	}

	r := &RawInterface{
		id:               alloc.Interface(),
		description:      cfg.Description,
		reportDescriptor: cfg.ReportDescriptor,
		subclass:         cfg.SubClass,
		protocol:         cfg.Protocol,
		idleDefault:      cfg.IdleDefault,
		hidProtocol:      usb.HIDProtocolReport,
		globalIdle:       cfg.IdleDefault,
	}
	if cfg.Description != "" {
		r.stringIndex = alloc.StringIndex()
	}
	r.epIn = alloc.InterruptIn(inMax, inInterval)
	if cfg.OutMaxPacket > 0 {
		r.epOut = alloc.InterruptOut(cfg.OutMaxPacket, cfg.OutInterval)
	}
	return r
}

func (r *RawInterface) ID() usb.InterfaceNumber { return r.id }

func (r *RawInterface) ReportDescriptor() []byte { return r.reportDescriptor }

// InEndpoint returns the interrupt IN endpoint claimed at allocation.
func (r *RawInterface) InEndpoint() usb.Endpoint { return r.epIn }

// OutEndpoint returns the interrupt OUT endpoint, zero when the
// interface has none.
func (r *RawInterface) OutEndpoint() usb.Endpoint { return r.epOut }

func (r *RawInterface) WriteDescriptors(w DescriptorWriter) error {
	numEndpoints := uint8(1)
	if !r.epOut.IsZero() {
		numEndpoints = 2
	}
	ifaceDesc := usb.InterfaceDescriptor{
		BInterfaceNumber:   uint8(r.id),
		BNumEndpoints:      numEndpoints,
		BInterfaceClass:    usb.ClassHID,
		BInterfaceSubClass: r.subclass,
		BInterfaceProtocol: r.protocol,
		IInterface:         uint8(r.stringIndex),
	}
	if err := w.WriteDescriptor(usb.InterfaceDescType, ifaceDesc.Body()); err != nil {
		return err
	}
	body := DescriptorBody(r)
	if err := w.WriteDescriptor(usb.HIDDescType, body[:]); err != nil {
		return err
	}
	if err := w.WriteDescriptor(usb.EndpointDescType, r.epIn.Descriptor().Body()); err != nil {
		return err
	}
	if !r.epOut.IsZero() {
		if err := w.WriteDescriptor(usb.EndpointDescType, r.epOut.Descriptor().Body()); err != nil {
			return err
		}
	}
	return nil
}

// GetString serves the interface description. langID is ignored: the
// description is single language.
func (r *RawInterface) GetString(index usb.StringIndex, langID uint16) (string, bool) {
	if r.stringIndex != 0 && index == r.stringIndex {
		return r.description, true
	}
	return "", false
}

// Reset restores report protocol and the default idle rate and drops
// any buffered reports.
func (r *RawInterface) Reset() {
	r.hidProtocol = usb.HIDProtocolReport
	r.globalIdle = r.idleDefault
	r.numIdle = 0
	r.inPending = false
	r.outPending = false
}

// WriteReport stages data as the answer to the next GET_REPORT. One
// report is staged at a time; ErrWouldBlock is returned while the
// previous one has not been acknowledged.
func (r *RawInterface) WriteReport(data []byte) error {
	if len(data) > MaxReportSize {
		return ErrReportTooLong
	}
	if r.inPending {
		return ErrWouldBlock
	}
	r.inLen = copy(r.inReport[:], data)
	r.inPending = true
	return nil
}

// ReadReport drains the last report the host sent with SET_REPORT.
func (r *RawInterface) ReadReport(buf []byte) (int, error) {
	if !r.outPending {
		return 0, ErrWouldBlock
	}
	if len(buf) < r.outLen {
		return 0, ErrReportTooLong
	}
	r.outPending = false
	return copy(buf, r.outReport[:r.outLen]), nil
}

func (r *RawInterface) SetReport(data []byte) error {
	if len(data) == 0 {
		return ErrBadReport
	}
	if len(data) > MaxReportSize {
		return ErrReportTooLong
	}
	r.outLen = copy(r.outReport[:], data)
	r.outPending = true
	return nil
}

func (r *RawInterface) GetReport(buf []byte) (int, error) {
	if !r.inPending {
		return 0, ErrWouldBlock
	}
	if len(buf) < r.inLen {
		return 0, ErrReportTooLong
	}
	return copy(buf, r.inReport[:r.inLen]), nil
}

func (r *RawInterface) GetReportAck() error {
	if !r.inPending {
		return ErrWouldBlock
	}
	r.inPending = false
	return nil
}

func (r *RawInterface) SetIdle(reportID, value uint8) {
	if reportID == 0 {
		r.globalIdle = value
		r.numIdle = 0
		return
	}
	for i := 0; i < r.numIdle; i++ {
		if r.idleRates[i].reportID == reportID {
			r.idleRates[i].value = value
			return
		}
	}
	// Rates beyond the table fall back to the global rate.
	if r.numIdle < maxIdleReports {
		r.idleRates[r.numIdle] = idleRate{reportID: reportID, value: value}
		r.numIdle++
	}
}

func (r *RawInterface) GetIdle(reportID uint8) uint8 {
	for i := 0; i < r.numIdle; i++ {
		if r.idleRates[i].reportID == reportID {
			return r.idleRates[i].value
		}
	}
	return r.globalIdle
}

func (r *RawInterface) SetProtocol(p usb.HIDProtocol) { r.hidProtocol = p }

func (r *RawInterface) GetProtocol() usb.HIDProtocol { return r.hidProtocol }
