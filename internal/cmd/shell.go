package cmd

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/dlkj/hidra/hidclass"
	"github.com/dlkj/hidra/internal/profile"
	"github.com/dlkj/hidra/usb"

	"github.com/google/shlex"
)

// Shell assembles a profile and drives it from an interactive prompt,
// issuing the control requests a USB host would.
type Shell struct {
	Profile string `arg:"" help:"Profile file (.yaml, .toml or .json)" type:"existingfile"`
}

// Run is called by Kong when the shell command is executed.
func (s *Shell) Run(logger *slog.Logger) error {
	p, err := profile.Load(s.Profile)
	if err != nil {
		return err
	}
	handler, err := assemble(p)
	if err != nil {
		return err
	}
	logger.Info("device assembled", "profile", s.Profile, "interfaces", handler.Group().Len())
	return runShell(handler, os.Stdin, os.Stdout)
}

const shellHelp = `commands:
  list                            show interfaces and their state
  reset                           bus reset: restore power-up defaults
  setreport <id> <hex>            SET_REPORT (output) with the given payload
  getreport <id>                  GET_REPORT (input), print the payload
  idle <id> <report> [value]      GET_IDLE / SET_IDLE for one report ID
  protocol <id> [boot|report]     GET_PROTOCOL / SET_PROTOCOL
  string <index>                  read an interface string descriptor
  quit                            leave the shell`

func runShell(h *hidclass.Handler, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for sc.Scan() {
		args, err := shlex.Split(sc.Text())
		if err != nil {
			fmt.Fprintln(out, "parse error:", err)
			fmt.Fprint(out, "> ")
			continue
		}
		if len(args) > 0 {
			if args[0] == "quit" || args[0] == "exit" {
				return nil
			}
			if err := shellDispatch(h, out, args); err != nil {
				fmt.Fprintln(out, "error:", err)
			}
		}
		fmt.Fprint(out, "> ")
	}
	return sc.Err()
}

func shellDispatch(h *hidclass.Handler, out io.Writer, args []string) error {
	switch args[0] {
	case "help":
		fmt.Fprintln(out, shellHelp)
		return nil

	case "list":
		group := h.Group()
		for i, n := 0, group.Len(); i < n; i++ {
			ifc := group.At(i)
			fmt.Fprintf(out, "interface %d: protocol %s, idle %d, report descriptor %d bytes\n",
				ifc.ID(), protocolName(ifc.GetProtocol()), ifc.GetIdle(0),
				len(ifc.ReportDescriptor()))
		}
		return nil

	case "reset":
		h.Reset()
		fmt.Fprintln(out, "reset")
		return nil

	case "setreport":
		if len(args) != 3 {
			return errors.New("usage: setreport <id> <hex>")
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		data, err := hex.DecodeString(args[2])
		if err != nil {
			return fmt.Errorf("bad report hex: %w", err)
		}
		err = h.ControlOut(usb.SetupPacket{
			RequestType: usb.RequestTypeClass | usb.RecipientInterface,
			Request:     usb.HIDRequestSetReport,
			Value:       usb.ReportTypeOutput << 8,
			Index:       uint16(id),
			Length:      uint16(len(data)),
		}, data)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %d bytes\n", len(data))
		return nil

	case "getreport":
		if len(args) != 2 {
			return errors.New("usage: getreport <id>")
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		buf := make([]byte, hidclass.MaxReportSize)
		n, err := h.ControlIn(usb.SetupPacket{
			RequestType: usb.RequestDirectionMask | usb.RequestTypeClass | usb.RecipientInterface,
			Request:     usb.HIDRequestGetReport,
			Value:       usb.ReportTypeInput << 8,
			Index:       uint16(id),
			Length:      uint16(len(buf)),
		}, buf)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, hexBytes(buf[:n]))
		return nil

	case "idle":
		if len(args) != 3 && len(args) != 4 {
			return errors.New("usage: idle <id> <report> [value]")
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		report, err := strconv.ParseUint(args[2], 0, 8)
		if err != nil {
			return fmt.Errorf("bad report ID %q", args[2])
		}
		if len(args) == 4 {
			value, err := strconv.ParseUint(args[3], 0, 8)
			if err != nil {
				return fmt.Errorf("bad idle value %q", args[3])
			}
			return h.ControlOut(usb.SetupPacket{
				RequestType: usb.RequestTypeClass | usb.RecipientInterface,
				Request:     usb.HIDRequestSetIdle,
				Value:       uint16(value)<<8 | uint16(report),
				Index:       uint16(id),
			}, nil)
		}
		buf := make([]byte, 1)
		if _, err := h.ControlIn(usb.SetupPacket{
			RequestType: usb.RequestDirectionMask | usb.RequestTypeClass | usb.RecipientInterface,
			Request:     usb.HIDRequestGetIdle,
			Value:       uint16(report),
			Index:       uint16(id),
			Length:      1,
		}, buf); err != nil {
			return err
		}
		fmt.Fprintln(out, buf[0])
		return nil

	case "protocol":
		if len(args) != 2 && len(args) != 3 {
			return errors.New("usage: protocol <id> [boot|report]")
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		if len(args) == 3 {
			var p usb.HIDProtocol
			switch args[2] {
			case "boot":
				p = usb.HIDProtocolBoot
			case "report":
				p = usb.HIDProtocolReport
			default:
				return fmt.Errorf("unknown protocol %q", args[2])
			}
			return h.ControlOut(usb.SetupPacket{
				RequestType: usb.RequestTypeClass | usb.RecipientInterface,
				Request:     usb.HIDRequestSetProtocol,
				Value:       uint16(p),
				Index:       uint16(id),
			}, nil)
		}
		buf := make([]byte, 1)
		if _, err := h.ControlIn(usb.SetupPacket{
			RequestType: usb.RequestDirectionMask | usb.RequestTypeClass | usb.RecipientInterface,
			Request:     usb.HIDRequestGetProtocol,
			Index:       uint16(id),
			Length:      1,
		}, buf); err != nil {
			return err
		}
		fmt.Fprintln(out, protocolName(usb.HIDProtocol(buf[0])))
		return nil

	case "string":
		if len(args) != 2 {
			return errors.New("usage: string <index>")
		}
		index, err := strconv.ParseUint(args[1], 0, 8)
		if err != nil {
			return fmt.Errorf("bad string index %q", args[1])
		}
		s, ok := h.GetString(usb.StringIndex(index), 0x0409)
		if !ok {
			return fmt.Errorf("no string at index %d", index)
		}
		fmt.Fprintf(out, "%q\n", s)
		return nil
	}
	return fmt.Errorf("unknown command %q (try help)", args[0])
}

func parseID(s string) (usb.InterfaceNumber, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 0, 8)
	if err != nil {
		return 0, fmt.Errorf("bad interface number %q", s)
	}
	return usb.InterfaceNumber(id), nil
}

func protocolName(p usb.HIDProtocol) string {
	if p == usb.HIDProtocolBoot {
		return "boot"
	}
	return "report"
}
