package usb

import (
	"encoding/binary"
	"fmt"
)

// bmRequestType bit fields.
const (
	RequestDirectionMask = 0x80
	RequestTypeMask      = 0x60
	RequestRecipientMask = 0x1F

	RequestTypeStandard = 0x00
	RequestTypeClass    = 0x20
	RequestTypeVendor   = 0x40

	RecipientDevice    = 0x00
	RecipientInterface = 0x01
	RecipientEndpoint  = 0x02
)

// Standard request codes.
const (
	RequestGetStatus        = 0x00
	RequestClearFeature     = 0x01
	RequestSetFeature       = 0x03
	RequestSetAddress       = 0x05
	RequestGetDescriptor    = 0x06
	RequestSetDescriptor    = 0x07
	RequestGetConfiguration = 0x08
	RequestSetConfiguration = 0x09
	RequestGetInterface     = 0x0A
	RequestSetInterface     = 0x0B
)

// HID class request codes.
const (
	HIDRequestGetReport   = 0x01
	HIDRequestGetIdle     = 0x02
	HIDRequestGetProtocol = 0x03
	HIDRequestSetReport   = 0x09
	HIDRequestSetIdle     = 0x0A
	HIDRequestSetProtocol = 0x0B
)

// HID report types carried in the high byte of wValue.
const (
	ReportTypeInput   = 0x01
	ReportTypeOutput  = 0x02
	ReportTypeFeature = 0x03
)

// SetupPacket is the 8-byte payload of a control SETUP transaction.
type SetupPacket struct {
	RequestType uint8
	Request     uint8
	Value       uint16 // LE
	Index       uint16 // LE
	Length      uint16 // LE
}

// ParseSetupPacket decodes an 8-byte setup packet.
func ParseSetupPacket(data []byte) (SetupPacket, error) {
	if len(data) < 8 {
		return SetupPacket{}, fmt.Errorf("usb: setup packet too short: %d bytes", len(data))
	}
	return SetupPacket{
		RequestType: data[0],
		Request:     data[1],
		Value:       binary.LittleEndian.Uint16(data[2:4]),
		Index:       binary.LittleEndian.Uint16(data[4:6]),
		Length:      binary.LittleEndian.Uint16(data[6:8]),
	}, nil
}

// Bytes returns the wire representation of the packet.
func (s SetupPacket) Bytes() []byte {
	b := make([]byte, 8)
	b[0] = s.RequestType
	b[1] = s.Request
	binary.LittleEndian.PutUint16(b[2:4], s.Value)
	binary.LittleEndian.PutUint16(b[4:6], s.Index)
	binary.LittleEndian.PutUint16(b[6:8], s.Length)
	return b
}

// In reports whether the data stage moves device to host.
func (s SetupPacket) In() bool { return s.RequestType&RequestDirectionMask != 0 }

// Type returns the request type bits (standard, class or vendor).
func (s SetupPacket) Type() uint8 { return s.RequestType & RequestTypeMask }

// Recipient returns the recipient bits of bmRequestType.
func (s SetupPacket) Recipient() uint8 { return s.RequestType & RequestRecipientMask }

func (s SetupPacket) IsStandard() bool { return s.Type() == RequestTypeStandard }
func (s SetupPacket) IsClass() bool    { return s.Type() == RequestTypeClass }

// DescriptorType returns the descriptor type of a GET_DESCRIPTOR request.
func (s SetupPacket) DescriptorType() uint8 { return uint8(s.Value >> 8) }

// DescriptorIndex returns the descriptor index of a GET_DESCRIPTOR request.
func (s SetupPacket) DescriptorIndex() uint8 { return uint8(s.Value) }

// InterfaceNumber returns the interface addressed by an
// interface-recipient request (low byte of wIndex).
func (s SetupPacket) InterfaceNumber() uint8 { return uint8(s.Index) }

// ReportType returns the HID report type of a GET/SET_REPORT request.
func (s SetupPacket) ReportType() uint8 { return uint8(s.Value >> 8) }

// ReportID returns the report ID of a HID report or idle request.
func (s SetupPacket) ReportID() uint8 { return uint8(s.Value) }

// IdleDuration returns the idle duration of a SET_IDLE request in
// 4 millisecond units.
func (s SetupPacket) IdleDuration() uint8 { return uint8(s.Value >> 8) }

// Protocol returns the protocol of a SET_PROTOCOL request.
func (s SetupPacket) Protocol() HIDProtocol { return HIDProtocol(s.Value) }
