package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/ungerik/go-splice/cmd/fsplice/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(cmd.Execute(ctx))
}
