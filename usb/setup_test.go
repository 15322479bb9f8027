package usb_test

import (
	"testing"

	"github.com/dlkj/hidra/usb"
	"github.com/stretchr/testify/assert"
)

func TestParseSetupPacket(t *testing.T) {
	type testCase struct {
		name     string
		raw      []byte
		expected usb.SetupPacket
	}

	cases := []testCase{
		{
			name: "get report descriptor",
			raw:  []byte{0x81, 0x06, 0x00, 0x22, 0x01, 0x00, 0x3F, 0x00},
			expected: usb.SetupPacket{
				RequestType: 0x81,
				Request:     usb.RequestGetDescriptor,
				Value:       0x2200,
				Index:       0x0001,
				Length:      0x003F,
			},
		},
		{
			name: "set idle",
			raw:  []byte{0x21, 0x0A, 0x00, 0x7D, 0x02, 0x00, 0x00, 0x00},
			expected: usb.SetupPacket{
				RequestType: 0x21,
				Request:     usb.HIDRequestSetIdle,
				Value:       0x7D00,
				Index:       0x0002,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := usb.ParseSetupPacket(tc.raw)
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, tc.raw, got.Bytes())
		})
	}
}

func TestParseSetupPacketShort(t *testing.T) {
	_, err := usb.ParseSetupPacket([]byte{0x81, 0x06})
	assert.Error(t, err)
}

func TestSetupPacketAccessors(t *testing.T) {
	getDesc := usb.SetupPacket{
		RequestType: 0x81, // in, standard, interface
		Request:     usb.RequestGetDescriptor,
		Value:       0x2200,
		Index:       0x0003,
		Length:      64,
	}
	assert.True(t, getDesc.In())
	assert.True(t, getDesc.IsStandard())
	assert.False(t, getDesc.IsClass())
	assert.Equal(t, uint8(usb.RecipientInterface), getDesc.Recipient())
	assert.Equal(t, uint8(usb.ReportDescType), getDesc.DescriptorType())
	assert.Equal(t, uint8(0), getDesc.DescriptorIndex())
	assert.Equal(t, uint8(3), getDesc.InterfaceNumber())

	getReport := usb.SetupPacket{
		RequestType: 0xA1, // in, class, interface
		Request:     usb.HIDRequestGetReport,
		Value:       0x0102,
		Index:       0x0001,
		Length:      8,
	}
	assert.True(t, getReport.IsClass())
	assert.Equal(t, uint8(usb.ReportTypeInput), getReport.ReportType())
	assert.Equal(t, uint8(2), getReport.ReportID())

	setIdle := usb.SetupPacket{
		RequestType: 0x21,
		Request:     usb.HIDRequestSetIdle,
		Value:       0x7D01,
	}
	assert.False(t, setIdle.In())
	assert.Equal(t, uint8(0x7D), setIdle.IdleDuration())
	assert.Equal(t, uint8(0x01), setIdle.ReportID())

	setProtocol := usb.SetupPacket{
		RequestType: 0x21,
		Request:     usb.HIDRequestSetProtocol,
		Value:       0x0001,
	}
	assert.Equal(t, usb.HIDProtocolReport, setProtocol.Protocol())
}
