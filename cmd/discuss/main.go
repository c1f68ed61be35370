package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/randalmurphal/discuss/internal/cli"
	"github.com/randalmurphal/discuss/internal/output"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, cli.DefaultDependencies(), os.Args[1:], os.Stdout, os.Stderr)
	stop()

	if err != nil {
		f := output.NewFormatter(os.Stderr)
		f.Error(err.Error())
		if hint := cli.Hint(err); hint != "" {
			f.Info(hint)
		}
		os.Exit(1)
	}
}
