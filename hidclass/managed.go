package hidclass

import (
	"bytes"
	"time"

	"github.com/dlkj/hidra/usb"
)

// Idle rates count in units of 4 ms.
const idleUnit = 4 * time.Millisecond

// ProtocolMode selects how a ManagedInterface answers SET_PROTOCOL.
type ProtocolMode uint8

const (
	// ProtocolModeDefault follows the host's protocol selection.
	ProtocolModeDefault ProtocolMode = iota
	// ProtocolModeForceBoot pins the boot protocol regardless of the
	// host. For devices that only ever speak the boot report layout.
	ProtocolModeForceBoot
	// ProtocolModeForceReport pins the report protocol.
	ProtocolModeForceReport
)

// ManagedConfig configures the report bookkeeping of a
// ManagedInterface.
type ManagedConfig struct {
	Mode ProtocolMode
}

// Managed wraps inner with host-independent report bookkeeping:
// protocol pinning, input report deduplication and idle-rate-driven
// repeats.
func Managed(inner Config, cfg ManagedConfig) WrapConfig {
	return WrapConfig{
		Inner: inner,
		New: func(ifc Interface) Interface {
			return NewManaged(ifc, cfg)
		},
	}
}

// ManagedInterface decorates another interface. All capability calls
// delegate to the inner interface; SetProtocol, SetIdle and Reset are
// intercepted for the bookkeeping below.
type ManagedInterface struct {
	Interface

	mode ProtocolMode

	lastReport [MaxReportSize]byte
	lastLen    int
	haveLast   bool
	sinceWrite time.Duration
}

var _ Interface = (*ManagedInterface)(nil)

// NewManaged wraps an already-allocated interface.
func NewManaged(inner Interface, cfg ManagedConfig) *ManagedInterface {
	m := &ManagedInterface{Interface: inner, mode: cfg.Mode}
	m.applyMode()
	return m
}

func (m *ManagedInterface) applyMode() {
	switch m.mode {
	case ProtocolModeForceBoot:
		m.Interface.SetProtocol(usb.HIDProtocolBoot)
	case ProtocolModeForceReport:
		m.Interface.SetProtocol(usb.HIDProtocolReport)
	}
}

// SetProtocol follows the host in default mode and re-pins the forced
// protocol otherwise.
func (m *ManagedInterface) SetProtocol(p usb.HIDProtocol) {
	if m.mode != ProtocolModeDefault {
		m.applyMode()
		return
	}
	m.Interface.SetProtocol(p)
}

// SetIdle restarts the idle countdown along with storing the rate.
func (m *ManagedInterface) SetIdle(reportID, value uint8) {
	m.Interface.SetIdle(reportID, value)
	m.sinceWrite = 0
}

// Reset resets the inner interface, re-pins a forced protocol and
// forgets report tracking state.
func (m *ManagedInterface) Reset() {
	m.Interface.Reset()
	m.applyMode()
	m.haveLast = false
	m.sinceWrite = 0
}

// Tick advances the idle clock by the time elapsed since the last
// call. The owner calls it from its polling loop.
func (m *ManagedInterface) Tick(elapsed time.Duration) {
	m.sinceWrite += elapsed
}

// ShouldWrite reports whether report is due on the interrupt pipe:
// either it differs from the last written report, or the global idle
// period has elapsed with a nonzero idle rate. When it returns true
// the report is recorded as written and the idle clock restarts.
func (m *ManagedInterface) ShouldWrite(report []byte) bool {
	if len(report) > MaxReportSize {
		return false
	}
	if m.haveLast && bytes.Equal(report, m.lastReport[:m.lastLen]) {
		idle := m.GetIdle(0)
		if idle == 0 {
			return false
		}
		if m.sinceWrite < time.Duration(idle)*idleUnit {
			return false
		}
	}
	m.lastLen = copy(m.lastReport[:], report)
	m.haveLast = true
	m.sinceWrite = 0
	return true
}
