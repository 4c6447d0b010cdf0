package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lox/dixit/cmd/dixit/shared"
	"github.com/lox/dixit/internal/tui"
)

// WatchCmd shows a live view of a server's lobby
type WatchCmd struct {
	URL      string        `short:"u" default:"http://localhost:8080" help:"Server URL"`
	Interval time.Duration `short:"i" default:"2s" help:"Polling interval"`
	LogFile  string        `help:"Write debug logs to this file"`
}

func (c *WatchCmd) Run() error {
	var w io.Writer = io.Discard
	if c.LogFile != "" {
		f, err := os.Create(c.LogFile)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		defer f.Close()
		w = f
	}
	logger := shared.SetupFileLogger(w, c.LogFile != "")

	client, err := tui.NewClient(c.URL)
	if err != nil {
		return err
	}
	return tui.Run(shared.SetupSignalHandler(logger), tui.NewModel(client, c.Interval, logger))
}
