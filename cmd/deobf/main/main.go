package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/arthur-debert/deobf/cmd/deobf"
	"github.com/arthur-debert/deobf/pkg/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := deobf.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if r, rerr := ui.NewRenderer(ui.FormatAuto, os.Stderr); rerr == nil {
			_ = r.RenderError(err)
		}
		stop()
		os.Exit(1)
	}
}
