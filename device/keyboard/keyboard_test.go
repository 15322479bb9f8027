package keyboard_test

import (
	"testing"

	"github.com/dlkj/hidra/device/keyboard"
	"github.com/dlkj/hidra/hidclass"
	"github.com/dlkj/hidra/usb"
	"github.com/stretchr/testify/assert"
)

func TestBootReportDescriptor(t *testing.T) {
	expected := []byte{
		0x05, 0x01, // Usage Page (Generic Desktop)
		0x09, 0x06, // Usage (Keyboard)
		0xA1, 0x01, // Collection (Application)
		0x05, 0x07, //   Usage Page (Keyboard/Keypad)
		0x19, 0xE0, //   Usage Minimum (Left Control)
		0x29, 0xE7, //   Usage Maximum (Right GUI)
		0x15, 0x00, //   Logical Minimum (0)
		0x25, 0x01, //   Logical Maximum (1)
		0x75, 0x01, //   Report Size (1)
		0x95, 0x08, //   Report Count (8)
		0x81, 0x02, //   Input (Data, Variable, Absolute) - modifiers
		0x95, 0x01, //   Report Count (1)
		0x75, 0x08, //   Report Size (8)
		0x81, 0x01, //   Input (Constant) - reserved byte
		0x95, 0x05, //   Report Count (5)
		0x75, 0x01, //   Report Size (1)
		0x05, 0x08, //   Usage Page (LEDs)
		0x19, 0x01, //   Usage Minimum (Num Lock)
		0x29, 0x05, //   Usage Maximum (Kana)
		0x91, 0x02, //   Output (Data, Variable, Absolute) - LEDs
		0x95, 0x01, //   Report Count (1)
		0x75, 0x03, //   Report Size (3)
		0x91, 0x01, //   Output (Constant) - padding
		0x95, 0x06, //   Report Count (6)
		0x75, 0x08, //   Report Size (8)
		0x15, 0x00, //   Logical Minimum (0)
		0x25, 0x65, //   Logical Maximum (101)
		0x05, 0x07, //   Usage Page (Keyboard/Keypad)
		0x19, 0x00, //   Usage Minimum (0)
		0x29, 0x65, //   Usage Maximum (101)
		0x81, 0x00, //   Input (Data, Array) - key slots
		0xC0, // End Collection
	}
	assert.Equal(t, expected, []byte(keyboard.BootReportDescriptor))
}

func TestBootReports(t *testing.T) {
	type testCase struct {
		name           string
		report         keyboard.Report
		expectedReport []byte
	}

	cases := []testCase{
		{
			name:           "no keys",
			report:         keyboard.NewReport(0),
			expectedReport: []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
		{
			name:           "single key",
			report:         keyboard.NewReport(0, keyboard.KeyC),
			expectedReport: []byte{0x00, 0x00, 0x06, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
		{
			name:           "shifted letters",
			report:         keyboard.NewReport(keyboard.ModLeftShift, keyboard.KeyA, keyboard.KeyB),
			expectedReport: []byte{0x02, 0x00, 0x04, 0x05, 0x00, 0x00, 0x00, 0x00},
		},
		{
			name:           "six keys",
			report:         keyboard.NewReport(0, keyboard.KeyA, keyboard.KeyB, keyboard.KeyC, keyboard.KeyD, keyboard.KeyE, keyboard.KeyF),
			expectedReport: []byte{0x00, 0x00, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09},
		},
		{
			name:           "rollover to phantom state",
			report:         keyboard.NewReport(0, keyboard.KeyA, keyboard.KeyB, keyboard.KeyC, keyboard.KeyD, keyboard.KeyE, keyboard.KeyF, keyboard.KeyG),
			expectedReport: []byte{0x00, 0x00, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedReport, tc.report.Bytes())
		})
	}
}

func TestNKROInputReports(t *testing.T) {
	type testCase struct {
		name           string
		inputState     keyboard.InputState
		expectedReport []byte
	}

	cases := []testCase{
		{
			name:       "no keys, no modifiers",
			inputState: keyboard.InputState{},
			expectedReport: []byte{
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
			},
		},
		{
			name:       "press C",
			inputState: keyboard.PressKey(keyboard.KeyC),
			expectedReport: []byte{
				0x00, 0x00, 0x40, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
			},
		},
		{
			name:       "ctrl-C",
			inputState: keyboard.PressKeyWithMod(keyboard.ModLeftCtrl, keyboard.KeyC),
			expectedReport: []byte{
				0x01, 0x00, 0x40, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
			},
		},
		{
			name:       "WASD",
			inputState: keyboard.PressKey(keyboard.KeyW, keyboard.KeyA, keyboard.KeyS, keyboard.KeyD),
			expectedReport: []byte{
				0x00, 0x00, 0x90, 0x00, 0x40, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedReport, tc.inputState.BuildReport())
		})
	}
}

func TestInputStatePressRelease(t *testing.T) {
	var s keyboard.InputState

	s.Press(keyboard.KeySpace)
	assert.True(t, s.IsPressed(keyboard.KeySpace))
	assert.False(t, s.IsPressed(keyboard.KeyA))

	s.Release(keyboard.KeySpace)
	assert.False(t, s.IsPressed(keyboard.KeySpace))
	assert.Equal(t, keyboard.InputState{}, s)
}

func TestBootLEDInterception(t *testing.T) {
	kb := keyboard.NewBoot(usb.NewAllocator(), "")

	assert.Equal(t, uint8(0), kb.LEDs())

	assert.NoError(t, kb.SetReport([]byte{keyboard.LEDNumLock | keyboard.LEDCapsLock}))
	assert.Equal(t, uint8(keyboard.LEDNumLock|keyboard.LEDCapsLock), kb.LEDs())

	assert.ErrorIs(t, kb.SetReport([]byte{1, 2}), hidclass.ErrBadReport)
	assert.ErrorIs(t, kb.SetReport(nil), hidclass.ErrBadReport)

	kb.Reset()
	assert.Equal(t, uint8(0), kb.LEDs())
}

func TestBootConfigAllocation(t *testing.T) {
	group := hidclass.Allocate(usb.NewAllocator(),
		keyboard.BootConfig("boot keys"),
		keyboard.NKROConfig(""),
	)

	boot, ok := group.At(0).(*keyboard.Boot)
	assert.True(t, ok)
	assert.Equal(t, usb.InterfaceNumber(0), boot.ID())

	s, found := boot.GetString(4, 0x0409)
	assert.True(t, found)
	assert.Equal(t, "boot keys", s)

	nkro, ok := group.At(1).(*keyboard.NKRO)
	assert.True(t, ok)
	assert.Equal(t, usb.InterfaceNumber(1), nkro.ID())
	assert.Equal(t, 64, len(nkro.ReportDescriptor()))
}

func TestBootWriteKeys(t *testing.T) {
	kb := keyboard.NewBoot(usb.NewAllocator(), "")

	assert.NoError(t, kb.WriteKeys(keyboard.ModLeftShift, keyboard.KeyH, keyboard.KeyI))

	buf := make([]byte, 8)
	n, err := kb.GetReport(buf)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x00, 0x0B, 0x0C, 0x00, 0x00, 0x00, 0x00}, buf[:n])
}
