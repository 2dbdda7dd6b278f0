package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/lfmonteiro/taskdeck/cmd/taskdeck/serve"
	"github.com/lfmonteiro/taskdeck/cmd/taskdeck/users"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "taskdeck",
		Usage: "Keep track of what needs to be done, one user at a time",
		Commands: []*cli.Command{
			serve.Cmd(),
			users.Cmd(),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
	}
}
