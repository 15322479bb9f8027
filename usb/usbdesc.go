// Package usb contains helpers for building USB descriptors and
// allocating bus resources for a device-side function.
package usb

import (
	"bytes"
	"encoding/binary"
)

// USB descriptor type constants
const (
	DeviceDescType    = 0x01
	ConfigDescType    = 0x02
	StringDescType    = 0x03
	InterfaceDescType = 0x04
	EndpointDescType  = 0x05
	HIDDescType       = 0x21
	ReportDescType    = 0x22
)

// Descriptor lengths in bytes (fixed values from USB spec)
const (
	DeviceDescLen    = 18
	ConfigDescLen    = 9
	InterfaceDescLen = 9
	EndpointDescLen  = 7
	HIDDescLen       = 9
)

// Interface class codes for HID functions.
const (
	ClassHID = 0x03

	SubclassNone = 0x00
	SubclassBoot = 0x01

	InterfaceProtocolNone     = 0x00
	InterfaceProtocolKeyboard = 0x01
	InterfaceProtocolMouse    = 0x02
)

// HID class descriptor field values.
const (
	HIDVersion1_11   = 0x0111 // bcdHID, BCD-encoded
	CountryCodeNone  = 0x00
	HIDDescBodyLen   = 7
	MaxReportDescLen = 0xFFFF
)

// Endpoint attribute and address bits.
const (
	EndpointDirIn = 0x80

	TransferTypeControl   = 0x00
	TransferTypeIso       = 0x01
	TransferTypeBulk      = 0x02
	TransferTypeInterrupt = 0x03
)

// InterfaceNumber identifies an interface within a configuration.
// Numbers are handed out by the Allocator and never reused.
type InterfaceNumber uint8

// StringIndex identifies a string descriptor. Index 0 is the language
// ID table and 1..3 are reserved for the device-level strings, so the
// Allocator hands out indices from 4 upward.
type StringIndex uint8

// HIDProtocol is the active protocol of a boot-capable interface.
type HIDProtocol uint8

const (
	HIDProtocolBoot   HIDProtocol = 0
	HIDProtocolReport HIDProtocol = 1
)

// EncodeStringDescriptor converts a UTF-8 string to a USB string descriptor byte array.
// The resulting descriptor has the format:
//
//	Byte 0: bLength (total descriptor length)
//	Byte 1: bDescriptorType (0x03 for string)
//	Bytes 2+: UTF-16LE encoded string
func EncodeStringDescriptor(s string) []byte {
	runes := []rune(s)
	buf := make([]byte, 2+len(runes)*2)
	buf[0] = uint8(len(buf)) // bLength
	buf[1] = StringDescType
	for i, r := range runes {
		buf[2+i*2] = uint8(r)
		buf[2+i*2+1] = uint8(r >> 8)
	}
	return buf
}

// DeviceDescriptor represents the standard USB device descriptor.
// BLength is computed dynamically; BDescriptorType is implied DeviceDescType.
type DeviceDescriptor struct {
	BcdUSB             uint16 // LE
	BDeviceClass       uint8
	BDeviceSubClass    uint8
	BDeviceProtocol    uint8
	BMaxPacketSize0    uint8
	IDVendor           uint16 // LE
	IDProduct          uint16 // LE
	BcdDevice          uint16 // LE
	IManufacturer      uint8
	IProduct           uint8
	ISerialNumber      uint8
	BNumConfigurations uint8
}

// Bytes returns the binary representation of the DeviceDescriptor with BLength auto-filled.
func (d DeviceDescriptor) Bytes() []byte {
	var b bytes.Buffer
	b.WriteByte(DeviceDescLen)
	b.WriteByte(DeviceDescType)
	_ = binary.Write(&b, binary.LittleEndian, d.BcdUSB)
	b.WriteByte(d.BDeviceClass)
	b.WriteByte(d.BDeviceSubClass)
	b.WriteByte(d.BDeviceProtocol)
	b.WriteByte(d.BMaxPacketSize0)
	_ = binary.Write(&b, binary.LittleEndian, d.IDVendor)
	_ = binary.Write(&b, binary.LittleEndian, d.IDProduct)
	_ = binary.Write(&b, binary.LittleEndian, d.BcdDevice)
	b.WriteByte(d.IManufacturer)
	b.WriteByte(d.IProduct)
	b.WriteByte(d.ISerialNumber)
	b.WriteByte(d.BNumConfigurations)
	return b.Bytes()
}

// ConfigHeader represents the USB configuration descriptor header (9 bytes).
// WTotalLength and BNumInterfaces are patched by the DescriptorWriter when
// the configuration is assembled through BeginConfiguration/EndConfiguration.
type ConfigHeader struct {
	WTotalLength        uint16 // LE
	BNumInterfaces      uint8
	BConfigurationValue uint8
	IConfiguration      uint8
	BMAttributes        uint8
	BMaxPower           uint8
}

// Body returns the descriptor fields after the (bLength, bDescriptorType) header.
func (h ConfigHeader) Body() []byte {
	var b bytes.Buffer
	_ = binary.Write(&b, binary.LittleEndian, h.WTotalLength)
	b.WriteByte(h.BNumInterfaces)
	b.WriteByte(h.BConfigurationValue)
	b.WriteByte(h.IConfiguration)
	b.WriteByte(h.BMAttributes)
	b.WriteByte(h.BMaxPower)
	return b.Bytes()
}

// InterfaceDescriptor (9 bytes) for each interface altsetting.
type InterfaceDescriptor struct {
	BInterfaceNumber   uint8
	BAlternateSetting  uint8
	BNumEndpoints      uint8
	BInterfaceClass    uint8
	BInterfaceSubClass uint8
	BInterfaceProtocol uint8
	IInterface         uint8
}

func (i InterfaceDescriptor) Body() []byte {
	return []byte{
		i.BInterfaceNumber,
		i.BAlternateSetting,
		i.BNumEndpoints,
		i.BInterfaceClass,
		i.BInterfaceSubClass,
		i.BInterfaceProtocol,
		i.IInterface,
	}
}

// EndpointDescriptor (7 bytes) for each endpoint.
type EndpointDescriptor struct {
	BEndpointAddress uint8
	BMAttributes     uint8
	WMaxPacketSize   uint16 // LE
	BInterval        uint8
}

func (e EndpointDescriptor) Body() []byte {
	var b bytes.Buffer
	b.WriteByte(e.BEndpointAddress)
	b.WriteByte(e.BMAttributes)
	_ = binary.Write(&b, binary.LittleEndian, e.WMaxPacketSize)
	b.WriteByte(e.BInterval)
	return b.Bytes()
}

// HIDDescriptor is the HID class descriptor (0x21) announcing one
// subordinate report descriptor (0x22) of WDescriptorLength bytes.
//
// bLength (9) and bDescriptorType (0x21) are prepended by the writer.
type HIDDescriptor struct {
	BcdHID               uint16 // LE
	BCountryCode         uint8
	BNumDescriptors      uint8
	BClassDescriptorType uint8
	WDescriptorLength    uint16 // LE
}

// Body returns the 7 descriptor bytes after the (bLength, bDescriptorType) header.
func (h HIDDescriptor) Body() [HIDDescBodyLen]byte {
	var body [HIDDescBodyLen]byte
	binary.LittleEndian.PutUint16(body[0:2], h.BcdHID)
	body[2] = h.BCountryCode
	body[3] = h.BNumDescriptors
	body[4] = h.BClassDescriptorType
	binary.LittleEndian.PutUint16(body[5:7], h.WDescriptorLength)
	return body
}

// ParseHIDDescriptor decodes the 7 body bytes of a HID class descriptor.
func ParseHIDDescriptor(body []byte) (HIDDescriptor, bool) {
	if len(body) < HIDDescBodyLen {
		return HIDDescriptor{}, false
	}
	return HIDDescriptor{
		BcdHID:               binary.LittleEndian.Uint16(body[0:2]),
		BCountryCode:         body[2],
		BNumDescriptors:      body[3],
		BClassDescriptorType: body[4],
		WDescriptorLength:    binary.LittleEndian.Uint16(body[5:7]),
	}, true
}
