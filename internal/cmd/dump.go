// Package cmd implements the hidra CLI commands. Each command loads a
// device profile, allocates the interfaces it declares and works on
// the resulting group the way a USB host would.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dlkj/hidra/hidclass"
	"github.com/dlkj/hidra/internal/profile"
	"github.com/dlkj/hidra/usb"

	"golang.org/x/term"
)

// Dump assembles a profile and prints its descriptors.
type Dump struct {
	Profile string `arg:"" help:"Profile file (.yaml, .toml or .json)" type:"existingfile"`
	Size    int    `help:"Descriptor buffer capacity in bytes" default:"512"`
	Color   string `help:"Colorize output: auto, always, never" default:"auto" enum:"auto,always,never"`
}

// Run is called by Kong when the dump command is executed.
func (d *Dump) Run(logger *slog.Logger) error {
	p, err := profile.Load(d.Profile)
	if err != nil {
		return err
	}
	handler, err := assemble(p)
	if err != nil {
		return err
	}
	logger.Debug("profile assembled", "profile", d.Profile, "interfaces", handler.Group().Len())

	w := usb.NewDescriptorWriter(make([]byte, d.Size))
	if err := w.BeginConfiguration(usb.ConfigHeader{
		BConfigurationValue: 1,
		BMAttributes:        0x80, // bus powered
		BMaxPower:           50,   // 100 mA
	}); err != nil {
		return fmt.Errorf("cmd: configuration header: %w", err)
	}
	if err := handler.WriteDescriptors(w); err != nil {
		return fmt.Errorf("cmd: build configuration descriptor: %w", err)
	}
	if err := w.EndConfiguration(); err != nil {
		return err
	}

	color := d.Color == "always" || (d.Color == "auto" && term.IsTerminal(int(os.Stdout.Fd())))
	out := os.Stdout

	printDescriptor(out, color, "Device", p.DeviceDescriptor().Bytes()[2:])
	fmt.Fprintln(out)
	return dumpDescriptors(out, w.Bytes(), color)
}

// assemble allocates the interfaces of a profile into a class handler.
func assemble(p *profile.Profile) (*hidclass.Handler, error) {
	configs, err := p.Configs()
	if err != nil {
		return nil, err
	}
	alloc := usb.NewAllocator()
	return hidclass.NewHandler(hidclass.Allocate(alloc, configs...)), nil
}

// dumpDescriptors walks a descriptor stream and prints each descriptor
// as an annotated hex block.
func dumpDescriptors(out io.Writer, data []byte, color bool) error {
	for len(data) > 0 {
		n := int(data[0])
		if n < 2 || n > len(data) {
			return fmt.Errorf("cmd: bad bLength %d with %d bytes left", n, len(data))
		}
		printDescriptor(out, color, descTypeName(data[1]), data[2:n])

		if data[1] == usb.HIDDescType {
			if h, ok := usb.ParseHIDDescriptor(data[2:n]); ok {
				fmt.Fprintf(out, "  bcdHID %04x, report descriptor %d bytes\n",
					h.BcdHID, h.WDescriptorLength)
			}
		}
		data = data[n:]
	}
	return nil
}

func printDescriptor(out io.Writer, color bool, name string, body []byte) {
	if color {
		fmt.Fprintf(out, "\x1b[36m%s\x1b[0m (%d bytes)\n", name, len(body)+2)
	} else {
		fmt.Fprintf(out, "%s (%d bytes)\n", name, len(body)+2)
	}
	fmt.Fprintf(out, "  %s\n", hexBytes(body))
}

func descTypeName(t uint8) string {
	switch t {
	case usb.DeviceDescType:
		return "Device"
	case usb.ConfigDescType:
		return "Configuration"
	case usb.StringDescType:
		return "String"
	case usb.InterfaceDescType:
		return "Interface"
	case usb.EndpointDescType:
		return "Endpoint"
	case usb.HIDDescType:
		return "HID"
	case usb.ReportDescType:
		return "Report"
	}
	return fmt.Sprintf("Unknown(0x%02x)", t)
}

// hexBytes formats b as space separated hex pairs.
func hexBytes(b []byte) string {
	var sb strings.Builder
	for i, c := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02x", c)
	}
	return sb.String()
}
