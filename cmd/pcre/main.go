package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/coregx/pcre/internal/cli"
	"github.com/spf13/afero"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.New(afero.NewOsFs(), os.Stdin, os.Stdout, os.Stderr).Run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
