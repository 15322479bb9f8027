package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dlkj/hidra/internal/profile"
)

// Report prints the report descriptor of every interface in a profile.
type Report struct {
	Profile string `arg:"" help:"Profile file (.yaml, .toml or .json)" type:"existingfile"`
}

// Run is called by Kong when the report command is executed.
func (r *Report) Run(logger *slog.Logger) error {
	p, err := profile.Load(r.Profile)
	if err != nil {
		return err
	}
	handler, err := assemble(p)
	if err != nil {
		return err
	}

	group := handler.Group()
	for i, n := 0, group.Len(); i < n; i++ {
		ifc := group.At(i)
		desc := ifc.ReportDescriptor()
		fmt.Fprintf(os.Stdout, "interface %d (%s): %d bytes\n",
			ifc.ID(), p.Interfaces[i].Type, len(desc))
		for off := 0; off < len(desc); off += 16 {
			end := min(off+16, len(desc))
			fmt.Fprintf(os.Stdout, "  %04x  %s\n", off, hexBytes(desc[off:end]))
		}
	}
	return nil
}
