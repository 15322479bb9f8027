package hidclass

import "github.com/dlkj/hidra/usb"

// Handler routes control requests for one device function to the
// interface they address. Requests that are not HID class traffic for
// an owned interface come back as ErrNotHandled so the surrounding
// device stack can stall or forward them.
type Handler struct {
	group Group
}

// NewHandler wraps an allocated group.
func NewHandler(group Group) *Handler {
	return &Handler{group: group}
}

// Group returns the interfaces the handler dispatches to.
func (h *Handler) Group() Group { return h.group }

// Reset resets every owned interface (bus reset, SET_CONFIGURATION).
func (h *Handler) Reset() { h.group.Reset() }

// WriteDescriptors emits the descriptors of every owned interface.
func (h *Handler) WriteDescriptors(w DescriptorWriter) error {
	return h.group.WriteDescriptors(w)
}

// GetString resolves interface-owned string indices.
func (h *Handler) GetString(index usb.StringIndex, langID uint16) (string, bool) {
	return h.group.GetString(index, langID)
}

// ControlIn services device-to-host control requests, filling buf and
// returning the number of bytes to send. Handled requests: GET_REPORT,
// GET_IDLE, GET_PROTOCOL and GET_DESCRIPTOR for the HID and report
// descriptors. Requests are routed by the low byte of wIndex.
func (h *Handler) ControlIn(setup usb.SetupPacket, buf []byte) (int, error) {
	if !setup.In() || setup.Recipient() != usb.RecipientInterface {
		return 0, ErrNotHandled
	}
	ifc := h.group.Find(usb.InterfaceNumber(setup.InterfaceNumber()))
	if ifc == nil {
		return 0, ErrNotHandled
	}

	switch {
	case setup.IsStandard() && setup.Request == usb.RequestGetDescriptor:
		return h.getDescriptor(ifc, setup, buf)

	case setup.IsClass():
		switch setup.Request {
		case usb.HIDRequestGetReport:
			n, err := ifc.GetReport(buf)
			if err != nil {
				return 0, err
			}
			if int(setup.Length) < n {
				n = int(setup.Length)
			}
			// Handing the data to the control pipe consumes the report.
			_ = ifc.GetReportAck()
			return n, nil

		case usb.HIDRequestGetIdle:
			if len(buf) < 1 || setup.Length < 1 {
				return 0, ErrReportTooLong
			}
			buf[0] = ifc.GetIdle(setup.ReportID())
			return 1, nil

		case usb.HIDRequestGetProtocol:
			if len(buf) < 1 || setup.Length < 1 {
				return 0, ErrReportTooLong
			}
			buf[0] = uint8(ifc.GetProtocol())
			return 1, nil
		}
	}
	return 0, ErrNotHandled
}

func (h *Handler) getDescriptor(ifc Interface, setup usb.SetupPacket, buf []byte) (int, error) {
	switch setup.DescriptorType() {
	case usb.ReportDescType:
		return clipDescriptor(ifc.ReportDescriptor(), setup, buf)

	case usb.HIDDescType:
		body := DescriptorBody(ifc)
		var desc [usb.HIDDescLen]byte
		desc[0] = usb.HIDDescLen
		desc[1] = usb.HIDDescType
		copy(desc[2:], body[:])
		return clipDescriptor(desc[:], setup, buf)
	}
	return 0, ErrNotHandled
}

// clipDescriptor copies desc limited by wLength and the buffer; hosts
// routinely read descriptors in short chunks.
func clipDescriptor(desc []byte, setup usb.SetupPacket, buf []byte) (int, error) {
	n := len(desc)
	if int(setup.Length) < n {
		n = int(setup.Length)
	}
	if len(buf) < n {
		return 0, ErrReportTooLong
	}
	return copy(buf[:n], desc[:n]), nil
}

// ControlOut services host-to-device control requests with data as the
// data stage payload. Handled requests: SET_REPORT, SET_IDLE,
// SET_PROTOCOL.
func (h *Handler) ControlOut(setup usb.SetupPacket, data []byte) error {
	if setup.In() || !setup.IsClass() || setup.Recipient() != usb.RecipientInterface {
		return ErrNotHandled
	}
	ifc := h.group.Find(usb.InterfaceNumber(setup.InterfaceNumber()))
	if ifc == nil {
		return ErrNotHandled
	}

	switch setup.Request {
	case usb.HIDRequestSetReport:
		return ifc.SetReport(data)
	case usb.HIDRequestSetIdle:
		ifc.SetIdle(setup.ReportID(), setup.IdleDuration())
		return nil
	case usb.HIDRequestSetProtocol:
		ifc.SetProtocol(setup.Protocol())
		return nil
	}
	return ErrNotHandled
}
