package usb

import (
	"errors"
	"fmt"
)

// ErrBufferOverflow is returned when a descriptor does not fit in the
// remaining capacity of a DescriptorWriter. Bytes written before the
// failing descriptor stand; the failing descriptor is not written at all.
var ErrBufferOverflow = errors.New("usb: descriptor buffer overflow")

// DescriptorWriter assembles a stream of USB descriptors into a
// caller-provided, fixed-capacity buffer. Each descriptor is emitted as
// (bLength, bDescriptorType, body...) with bLength auto-filled.
//
// A writer is single-use and not safe for concurrent use.
type DescriptorWriter struct {
	buf       []byte
	n         int
	cfgStart  int // offset of the active ConfigHeader, -1 when none
	cfgIfaces uint8
}

// NewDescriptorWriter returns a writer that fills buf from the start.
func NewDescriptorWriter(buf []byte) *DescriptorWriter {
	return &DescriptorWriter{buf: buf, cfgStart: -1}
}

// Len returns the number of bytes written so far.
func (w *DescriptorWriter) Len() int { return w.n }

// Bytes returns the written portion of the underlying buffer.
func (w *DescriptorWriter) Bytes() []byte { return w.buf[:w.n] }

// WriteDescriptor appends one descriptor of the given type. The two
// header bytes are prepended automatically; body holds everything after
// them. Returns ErrBufferOverflow when the descriptor does not fit.
func (w *DescriptorWriter) WriteDescriptor(descriptorType uint8, body []byte) error {
	total := 2 + len(body)
	if total > 0xFF {
		return fmt.Errorf("usb: descriptor type 0x%02x too long: %d bytes", descriptorType, total)
	}
	if w.n+total > len(w.buf) {
		return ErrBufferOverflow
	}
	w.buf[w.n] = uint8(total)
	w.buf[w.n+1] = descriptorType
	copy(w.buf[w.n+2:], body)
	w.n += total
	// Interface descriptors with alternate setting 0 count toward the
	// enclosing configuration's bNumInterfaces.
	if descriptorType == InterfaceDescType && w.cfgStart >= 0 && len(body) >= 2 && body[1] == 0 {
		w.cfgIfaces++
	}
	return nil
}

// Interface appends an interface descriptor.
func (w *DescriptorWriter) Interface(d InterfaceDescriptor) error {
	return w.WriteDescriptor(InterfaceDescType, d.Body())
}

// Endpoint appends an endpoint descriptor.
func (w *DescriptorWriter) Endpoint(d EndpointDescriptor) error {
	return w.WriteDescriptor(EndpointDescType, d.Body())
}

// HID appends a HID class descriptor (0x21).
func (w *DescriptorWriter) HID(d HIDDescriptor) error {
	body := d.Body()
	return w.WriteDescriptor(HIDDescType, body[:])
}

// BeginConfiguration appends the configuration header. WTotalLength
// and BNumInterfaces are ignored on input and patched when the
// matching EndConfiguration is reached.
func (w *DescriptorWriter) BeginConfiguration(h ConfigHeader) error {
	if w.cfgStart >= 0 {
		return fmt.Errorf("usb: configuration already open")
	}
	start := w.n
	if err := w.WriteDescriptor(ConfigDescType, h.Body()); err != nil {
		return err
	}
	w.cfgStart = start
	w.cfgIfaces = 0
	return nil
}

// EndConfiguration closes the configuration opened by
// BeginConfiguration, patching wTotalLength and bNumInterfaces.
func (w *DescriptorWriter) EndConfiguration() error {
	if w.cfgStart < 0 {
		return fmt.Errorf("usb: no open configuration")
	}
	total := w.n - w.cfgStart
	w.buf[w.cfgStart+2] = uint8(total)
	w.buf[w.cfgStart+3] = uint8(total >> 8)
	w.buf[w.cfgStart+4] = w.cfgIfaces
	w.cfgStart = -1
	return nil
}
