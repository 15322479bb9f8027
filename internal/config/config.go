// Package config defines the CLI structure and configuration for hidra.
package config

import (
	"github.com/dlkj/hidra/internal/cmd"
)

type Log struct {
	Level string `help:"Log level: trace, debug, info, warn, error" default:"info" env:"HIDRA_LOG_LEVEL"`
	File  string `help:"Log file path (default: none; logs only to console)" env:"HIDRA_LOG_FILE"`
}

// CLI is the root command structure for Kong CLI parsing.
type CLI struct {
	Log    `embed:"" prefix:"log."`
	Config string `help:"Configuration file path" env:"HIDRA_CONFIG"`

	Dump   cmd.Dump   `cmd:"" help:"Assemble a device profile and print its USB descriptors"`
	Report cmd.Report `cmd:"" help:"Print the report descriptor of every interface in a profile"`
	Verify cmd.Verify `cmd:"" help:"Validate device profiles"`
	Shell  cmd.Shell  `cmd:"" help:"Drive an assembled device interactively, host-side"`
}
