// ./main.go
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/cmd"
)

// main is the entry point for the webagent CLI.
func main() {
	// Ctrl-C cancels the run context so the loop finalizes instead of dying
	// mid-step.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.ExecuteContext(ctx)
}
