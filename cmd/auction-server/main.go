package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"auctionserver/internal/app"
)

func main() {
	os.Exit(run())
}

// run returns the process exit status. Failures are logged by the app
// package before they are returned.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApplication(app.Options{
		EnvFile: os.Getenv("ENV_FILE"),
	})
	if err != nil {
		return app.ExitCode(err)
	}
	defer application.Close()

	return app.ExitCode(application.Run(ctx))
}
