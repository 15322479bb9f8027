package profile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dlkj/hidra/device/consumer"
	"github.com/dlkj/hidra/device/mouse"
	"github.com/dlkj/hidra/hidclass"
	"github.com/dlkj/hidra/internal/profile"
	"github.com/dlkj/hidra/usb"
	"github.com/stretchr/testify/assert"
)

func writeProfile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write profile: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeProfile(t, "deskset.yaml", `
name: deskset
vendor_id: 0x1209
product_id: 0x0005
manufacturer: hidra
product: deskset
serial: "0001"
interfaces:
  - type: keyboard
    description: main keyboard
    protocol: force-boot
  - type: wheel-mouse
`)

	p, err := profile.Load(path)
	assert.NoError(t, err)
	assert.Equal(t, "deskset", p.Name)
	assert.Equal(t, uint16(0x1209), p.VendorID)
	assert.Equal(t, uint16(0x0005), p.ProductID)
	assert.Equal(t, "hidra", p.Manufacturer)
	assert.Len(t, p.Interfaces, 2)
	assert.Equal(t, profile.TypeKeyboard, p.Interfaces[0].Type)
	assert.Equal(t, "main keyboard", p.Interfaces[0].Description)
	assert.Equal(t, "force-boot", p.Interfaces[0].Protocol)
	assert.Equal(t, profile.TypeWheelMouse, p.Interfaces[1].Type)
}

func TestLoadTOML(t *testing.T) {
	path := writeProfile(t, "pad.toml", `
name = "pad"
vendor_id = 4617
product_id = 2

[[interfaces]]
type = "consumer"
description = "media keys"

[[interfaces]]
type = "raw"
descriptor = "05 01 09 06 a1 01 c0"
idle = 125
in_max_packet = 32
`)

	p, err := profile.Load(path)
	assert.NoError(t, err)
	assert.Equal(t, "pad", p.Name)
	assert.Equal(t, uint16(4617), p.VendorID)
	assert.Len(t, p.Interfaces, 2)
	assert.Equal(t, profile.TypeRaw, p.Interfaces[1].Type)
	assert.Equal(t, uint8(125), p.Interfaces[1].Idle)
	assert.Equal(t, uint16(32), p.Interfaces[1].InMaxPacket)
}

func TestLoadJSON(t *testing.T) {
	path := writeProfile(t, "kbd.json", `{
  "name": "kbd",
  "product": "just keys",
  "interfaces": [
    {"type": "nkro-keyboard", "description": "all the keys"}
  ]
}`)

	p, err := profile.Load(path)
	assert.NoError(t, err)
	assert.Equal(t, "kbd", p.Name)
	assert.Equal(t, "just keys", p.Product)
	assert.Len(t, p.Interfaces, 1)
	assert.Equal(t, profile.TypeNKROKeyboard, p.Interfaces[0].Type)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := writeProfile(t, "p.txt", "whatever")
	_, err := profile.Load(path)
	assert.ErrorContains(t, err, "unsupported format")
}

func TestLoadNoInterfaces(t *testing.T) {
	path := writeProfile(t, "empty.yaml", "name: empty\n")
	_, err := profile.Load(path)
	assert.ErrorContains(t, err, "no interfaces")
}

func TestConfigsAllocation(t *testing.T) {
	path := writeProfile(t, "mix.yaml", `
interfaces:
  - type: keyboard
    description: main keyboard
    protocol: force-boot
  - type: wheel-mouse
  - type: consumer
  - type: raw
    descriptor: "05 01 09 06 a1 01 c0"
`)

	p, err := profile.Load(path)
	assert.NoError(t, err)

	configs, err := p.Configs()
	assert.NoError(t, err)

	group := hidclass.Allocate(usb.NewAllocator(), configs...)
	assert.Equal(t, 4, group.Len())

	managed, ok := group.At(0).(*hidclass.ManagedInterface)
	assert.True(t, ok)
	assert.Equal(t, usb.InterfaceNumber(0), managed.ID())
	assert.Equal(t, usb.HIDProtocolBoot, managed.GetProtocol())

	_, ok = group.At(1).(*mouse.Wheel)
	assert.True(t, ok)

	_, ok = group.At(2).(*consumer.Control)
	assert.True(t, ok)

	raw, ok := group.At(3).(*hidclass.RawInterface)
	assert.True(t, ok)
	assert.Equal(t, []byte{0x05, 0x01, 0x09, 0x06, 0xA1, 0x01, 0xC0}, raw.ReportDescriptor())

	s, found := group.GetString(4, 0x0409)
	assert.True(t, found)
	assert.Equal(t, "main keyboard", s)
}

func TestConfigsUnknownType(t *testing.T) {
	p := &profile.Profile{Interfaces: []profile.Interface{{Type: "joystick"}}}
	_, err := p.Configs()
	assert.ErrorContains(t, err, `unknown interface type "joystick"`)
}

func TestConfigsBadRawDescriptor(t *testing.T) {
	type testCase struct {
		name       string
		descriptor string
		wantErr    string
	}

	cases := []testCase{
		{name: "not hex", descriptor: "zz", wantErr: "bad descriptor hex"},
		{name: "empty", descriptor: "", wantErr: "needs a descriptor"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &profile.Profile{Interfaces: []profile.Interface{{Type: profile.TypeRaw, Descriptor: tc.descriptor}}}
			_, err := p.Configs()
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestConfigsUnknownProtocolMode(t *testing.T) {
	p := &profile.Profile{Interfaces: []profile.Interface{{Type: profile.TypeKeyboard, Protocol: "bootish"}}}
	_, err := p.Configs()
	assert.ErrorContains(t, err, `unknown protocol mode "bootish"`)
}

func TestDeviceDescriptor(t *testing.T) {
	p := &profile.Profile{Manufacturer: "acme", Product: "kbd"}

	d := p.DeviceDescriptor()
	assert.Equal(t, uint16(0x1209), d.IDVendor)
	assert.Equal(t, uint16(0x0001), d.IDProduct)
	assert.Equal(t, uint8(1), d.IManufacturer)
	assert.Equal(t, uint8(2), d.IProduct)
	assert.Equal(t, uint8(0), d.ISerialNumber)
	assert.Equal(t, uint8(1), d.BNumConfigurations)

	s, ok := p.DeviceString(1)
	assert.True(t, ok)
	assert.Equal(t, "acme", s)

	_, ok = p.DeviceString(3)
	assert.False(t, ok)
}
