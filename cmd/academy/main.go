package main

import (
        "context"
        "os"
        "os/signal"
        "syscall"

        "academy-cli/internal/cli"
)

func main() {
        ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
        defer stop()

        cmd := cli.NewRootCmd()
        cmd.SetContext(ctx)
        if err := cli.Execute(cmd); err != nil {
                stop()
                os.Exit(1)
        }
}
