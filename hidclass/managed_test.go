package hidclass_test

import (
	"testing"
	"time"

	"github.com/dlkj/hidra/hidclass"
	"github.com/dlkj/hidra/usb"
	"github.com/stretchr/testify/assert"
)

func newTestManaged(t *testing.T, cfg hidclass.ManagedConfig) *hidclass.ManagedInterface {
	t.Helper()
	group := hidclass.Allocate(usb.NewAllocator(), hidclass.Managed(
		hidclass.RawConfig{ReportDescriptor: []byte{0x05, 0x01}},
		cfg,
	))
	m, ok := group.At(0).(*hidclass.ManagedInterface)
	if !ok {
		t.Fatalf("allocated %T, expected *hidclass.ManagedInterface", group.At(0))
	}
	return m
}

func TestManagedForcedProtocol(t *testing.T) {
	type testCase struct {
		name     string
		mode     hidclass.ProtocolMode
		expected usb.HIDProtocol
	}

	cases := []testCase{
		{name: "force boot", mode: hidclass.ProtocolModeForceBoot, expected: usb.HIDProtocolBoot},
		{name: "force report", mode: hidclass.ProtocolModeForceReport, expected: usb.HIDProtocolReport},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestManaged(t, hidclass.ManagedConfig{Mode: tc.mode})

			assert.Equal(t, tc.expected, m.GetProtocol())

			// Host protocol selection is overridden.
			m.SetProtocol(usb.HIDProtocolBoot)
			assert.Equal(t, tc.expected, m.GetProtocol())
			m.SetProtocol(usb.HIDProtocolReport)
			assert.Equal(t, tc.expected, m.GetProtocol())

			m.Reset()
			assert.Equal(t, tc.expected, m.GetProtocol())
		})
	}
}

func TestManagedDefaultProtocolFollowsHost(t *testing.T) {
	m := newTestManaged(t, hidclass.ManagedConfig{})

	assert.Equal(t, usb.HIDProtocolReport, m.GetProtocol())

	m.SetProtocol(usb.HIDProtocolBoot)
	assert.Equal(t, usb.HIDProtocolBoot, m.GetProtocol())

	m.Reset()
	assert.Equal(t, usb.HIDProtocolReport, m.GetProtocol())
}

func TestManagedShouldWriteDeduplicates(t *testing.T) {
	m := newTestManaged(t, hidclass.ManagedConfig{})

	report := []byte{0x00, 0x01}
	assert.True(t, m.ShouldWrite(report))
	assert.False(t, m.ShouldWrite(report))
	assert.False(t, m.ShouldWrite(report))

	assert.True(t, m.ShouldWrite([]byte{0x00, 0x02}))
	assert.False(t, m.ShouldWrite([]byte{0x00, 0x02}))

	// Shorter report with equal prefix is still a change.
	assert.True(t, m.ShouldWrite([]byte{0x00}))
}

func TestManagedShouldWriteIdleRepeat(t *testing.T) {
	m := newTestManaged(t, hidclass.ManagedConfig{})
	m.SetIdle(0, 1) // 4 ms

	report := []byte{0x2A}
	assert.True(t, m.ShouldWrite(report))
	assert.False(t, m.ShouldWrite(report))

	m.Tick(2 * time.Millisecond)
	assert.False(t, m.ShouldWrite(report))

	m.Tick(2 * time.Millisecond)
	assert.True(t, m.ShouldWrite(report))

	// The idle clock restarted with the repeat.
	assert.False(t, m.ShouldWrite(report))
}

func TestManagedIdleZeroNeverRepeats(t *testing.T) {
	m := newTestManaged(t, hidclass.ManagedConfig{})

	report := []byte{0x2A}
	assert.True(t, m.ShouldWrite(report))

	m.Tick(10 * time.Second)
	assert.False(t, m.ShouldWrite(report))
}

func TestManagedSetIdleRestartsCountdown(t *testing.T) {
	m := newTestManaged(t, hidclass.ManagedConfig{})
	m.SetIdle(0, 1)

	report := []byte{0x2A}
	assert.True(t, m.ShouldWrite(report))

	m.Tick(3 * time.Millisecond)
	m.SetIdle(0, 1)
	m.Tick(2 * time.Millisecond)
	assert.False(t, m.ShouldWrite(report))

	m.Tick(2 * time.Millisecond)
	assert.True(t, m.ShouldWrite(report))
}

func TestManagedResetForgetsLastReport(t *testing.T) {
	m := newTestManaged(t, hidclass.ManagedConfig{})

	report := []byte{0x01}
	assert.True(t, m.ShouldWrite(report))
	assert.False(t, m.ShouldWrite(report))

	m.Reset()
	assert.True(t, m.ShouldWrite(report))
}
