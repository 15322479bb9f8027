package hidclass

import "errors"

var (
	// ErrWouldBlock is returned when no report is staged for the
	// requested transfer direction.
	ErrWouldBlock = errors.New("hidclass: no report pending")

	// ErrReportTooLong is returned when a report does not fit the
	// destination buffer.
	ErrReportTooLong = errors.New("hidclass: report too long")

	// ErrBadReport is returned for reports with an invalid layout for
	// the receiving interface.
	ErrBadReport = errors.New("hidclass: malformed report")

	// ErrUnsupported is returned for HID class requests the addressed
	// interface does not implement.
	ErrUnsupported = errors.New("hidclass: unsupported request")

	// ErrNotHandled is returned for control requests that are not HID
	// class requests for an owned interface. The caller decides
	// whether to stall or forward them.
	ErrNotHandled = errors.New("hidclass: request not handled")
)
