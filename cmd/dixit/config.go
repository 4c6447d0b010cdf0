package main

import (
	"fmt"

	"github.com/lox/dixit/internal/config"
)

// ConfigCmd groups configuration file helpers
type ConfigCmd struct {
	Init ConfigInitCmd `cmd:"" help:"Write the default configuration"`
}

// ConfigInitCmd writes the default configuration to a file
type ConfigInitCmd struct {
	Path  string `arg:"" default:"dixit.hcl" help:"Destination file"`
	Force bool   `short:"f" help:"Overwrite an existing file"`
}

func (c *ConfigInitCmd) Run() error {
	if err := config.WriteDefault(c.Path, c.Force); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Printf("Wrote %s\n", c.Path)
	return nil
}
