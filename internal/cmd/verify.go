package cmd

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/dlkj/hidra/hidclass"
	"github.com/dlkj/hidra/internal/profile"
	"github.com/dlkj/hidra/usb"

	"golang.org/x/sync/errgroup"
)

// Verify validates one or more profiles: every interface must
// allocate, its report descriptor must fit the HID descriptor length
// field, interface numbers must be unique and the configuration
// descriptor must fit the buffer.
type Verify struct {
	Profiles []string `arg:"" help:"Profile files to validate" type:"existingfile"`
	Size     int      `help:"Descriptor buffer capacity to verify against" default:"512"`
}

// Run is called by Kong when the verify command is executed.
func (v *Verify) Run(logger *slog.Logger) error {
	var g errgroup.Group
	for _, path := range v.Profiles {
		path := path
		g.Go(func() error {
			if err := verifyProfile(path, v.Size); err != nil {
				logger.Error("profile invalid", "profile", path, "error", err)
				return fmt.Errorf("%s: %w", path, err)
			}
			logger.Info("profile ok", "profile", path)
			return nil
		})
	}
	return g.Wait()
}

func verifyProfile(path string, size int) error {
	p, err := profile.Load(path)
	if err != nil {
		return err
	}
	configs, err := p.Configs()
	if err != nil {
		return err
	}

	alloc := usb.NewAllocator()
	group := hidclass.Allocate(alloc, configs...)

	seen := make(map[usb.InterfaceNumber]bool, group.Len())
	for i, n := 0, group.Len(); i < n; i++ {
		ifc := group.At(i)
		if seen[ifc.ID()] {
			return fmt.Errorf("duplicate interface number %d", ifc.ID())
		}
		seen[ifc.ID()] = true

		n := len(ifc.ReportDescriptor())
		if n == 0 {
			return fmt.Errorf("interface %d: empty report descriptor", ifc.ID())
		}
		if n > usb.MaxReportDescLen {
			return fmt.Errorf("interface %d: report descriptor %d bytes exceeds %d",
				ifc.ID(), n, usb.MaxReportDescLen)
		}
		body := hidclass.DescriptorBody(ifc)
		if got := int(binary.LittleEndian.Uint16(body[5:7])); got != n {
			return fmt.Errorf("interface %d: descriptor body announces %d bytes, have %d",
				ifc.ID(), got, n)
		}
	}

	w := usb.NewDescriptorWriter(make([]byte, size))
	if err := w.BeginConfiguration(usb.ConfigHeader{BConfigurationValue: 1, BMAttributes: 0x80, BMaxPower: 50}); err != nil {
		return err
	}
	if err := group.WriteDescriptors(w); err != nil {
		return fmt.Errorf("configuration descriptor: %w", err)
	}
	return w.EndConfiguration()
}
