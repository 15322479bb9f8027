package usb_test

import (
	"testing"

	"github.com/dlkj/hidra/usb"
	"github.com/stretchr/testify/assert"
)

func TestAllocatorSequencing(t *testing.T) {
	a := usb.NewAllocator()

	assert.Equal(t, usb.InterfaceNumber(0), a.Interface())
	assert.Equal(t, usb.InterfaceNumber(1), a.Interface())
	assert.Equal(t, usb.InterfaceNumber(2), a.Interface())

	// Indices 1..3 belong to the device-level strings.
	assert.Equal(t, usb.StringIndex(4), a.StringIndex())
	assert.Equal(t, usb.StringIndex(5), a.StringIndex())
}

func TestAllocatorEndpoints(t *testing.T) {
	a := usb.NewAllocator()

	in := a.InterruptIn(64, 10)
	assert.Equal(t, uint8(0x81), in.Address)
	assert.Equal(t, uint16(64), in.MaxPacket)
	assert.Equal(t, uint8(10), in.Interval)
	assert.False(t, in.IsZero())

	assert.Equal(t, uint8(0x82), a.InterruptIn(8, 1).Address)

	out := a.InterruptOut(8, 255)
	assert.Equal(t, uint8(0x01), out.Address)
	assert.Equal(t, uint8(0x02), a.InterruptOut(8, 255).Address)

	assert.True(t, usb.Endpoint{}.IsZero())
}

func TestEndpointDescriptor(t *testing.T) {
	a := usb.NewAllocator()
	ep := a.InterruptIn(8, 24)

	assert.Equal(t, usb.EndpointDescriptor{
		BEndpointAddress: 0x81,
		BMAttributes:     usb.TransferTypeInterrupt,
		WMaxPacketSize:   8,
		BInterval:        24,
	}, ep.Descriptor())
}

func TestAllocatorExhaustionPanics(t *testing.T) {
	a := usb.NewAllocator()
	for i := 0; i < 15; i++ {
		a.InterruptIn(8, 1)
	}
	assert.Panics(t, func() { a.InterruptIn(8, 1) })

	b := usb.NewAllocator()
	for i := 0; i < 15; i++ {
		b.InterruptOut(8, 1)
	}
	assert.Panics(t, func() { b.InterruptOut(8, 1) })
}
