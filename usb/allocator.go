package usb

import "fmt"

// String indices 1..3 are conventionally the device-level manufacturer,
// product and serial strings; interface strings start above them.
const firstInterfaceString StringIndex = 4

const maxEndpointNumber = 15

// Endpoint is an interrupt endpoint claimed from the Allocator.
// The zero value means "no endpoint".
type Endpoint struct {
	Address   uint8 // includes the direction bit for IN endpoints
	MaxPacket uint16
	Interval  uint8 // polling interval in frames
}

// IsZero reports whether the endpoint was never allocated.
func (e Endpoint) IsZero() bool { return e.Address == 0 }

// Descriptor returns the endpoint descriptor announcing this endpoint.
func (e Endpoint) Descriptor() EndpointDescriptor {
	return EndpointDescriptor{
		BEndpointAddress: e.Address,
		BMAttributes:     TransferTypeInterrupt,
		WMaxPacketSize:   e.MaxPacket,
		BInterval:        e.Interval,
	}
}

// Allocator hands out the bus resources of one device function:
// interface numbers, string descriptor indices and interrupt endpoint
// addresses. Each resource is assigned once, in claim order, and never
// reclaimed. Allocation runs once at device construction; exhaustion is
// a startup misconfiguration and panics.
type Allocator struct {
	nextInterface InterfaceNumber
	nextString    StringIndex
	inUsed        uint8
	outUsed       uint8
}

// NewAllocator returns an allocator with all resources unclaimed.
func NewAllocator() *Allocator {
	return &Allocator{nextString: firstInterfaceString}
}

// Interface claims the next interface number.
func (a *Allocator) Interface() InterfaceNumber {
	n := a.nextInterface
	if n == 0xFF {
		panic("usb: out of interface numbers")
	}
	a.nextInterface++
	return n
}

// StringIndex claims the next string descriptor index.
func (a *Allocator) StringIndex() StringIndex {
	i := a.nextString
	if i == 0xFF {
		panic("usb: out of string indices")
	}
	a.nextString++
	return i
}

// InterruptIn claims the next interrupt IN endpoint.
func (a *Allocator) InterruptIn(maxPacket uint16, interval uint8) Endpoint {
	if a.inUsed >= maxEndpointNumber {
		panic(fmt.Sprintf("usb: out of IN endpoints (max %d)", maxEndpointNumber))
	}
	a.inUsed++
	return Endpoint{
		Address:   EndpointDirIn | a.inUsed,
		MaxPacket: maxPacket,
		Interval:  interval,
	}
}

// InterruptOut claims the next interrupt OUT endpoint.
func (a *Allocator) InterruptOut(maxPacket uint16, interval uint8) Endpoint {
	if a.outUsed >= maxEndpointNumber {
		panic(fmt.Sprintf("usb: out of OUT endpoints (max %d)", maxEndpointNumber))
	}
	a.outUsed++
	return Endpoint{
		Address:   a.outUsed,
		MaxPacket: maxPacket,
		Interval:  interval,
	}
}
