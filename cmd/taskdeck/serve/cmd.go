package serve

import (
	"os"
	"time"

	"github.com/lfmonteiro/taskdeck/auth"
	authapi "github.com/lfmonteiro/taskdeck/auth/api"
	"github.com/lfmonteiro/taskdeck/internal/cmdflags"
	"github.com/lfmonteiro/taskdeck/internal/httpserver"
	"github.com/lfmonteiro/taskdeck/store"
	"github.com/lfmonteiro/taskdeck/task"
	taskapi "github.com/lfmonteiro/taskdeck/task/api"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	bindAddr := "localhost:7020"
	storeDir := "./data"
	secretEnvVarName := ""
	lifetimeHours := 8
	issuer := "taskdeck"
	audience := "taskdeck"
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the task manager API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "bind",
				Usage:       "Address to bind and export the API",
				Value:       bindAddr,
				Destination: &bindAddr,
			},
			cmdflags.StoreDir(&storeDir),
			cmdflags.SecretEnvVar(&secretEnvVarName),
			&cli.IntFlag{
				Name:        "token-lifetime-hours",
				Usage:       "How long issued tokens remain valid, in hours",
				Value:       lifetimeHours,
				Destination: &lifetimeHours,
			},
			&cli.StringFlag{
				Name:        "issuer",
				Usage:       "Issuer claim embedded in every token",
				Value:       issuer,
				Destination: &issuer,
			},
			&cli.StringFlag{
				Name:        "audience",
				Usage:       "Audience claim embedded in every token",
				Value:       audience,
				Destination: &audience,
			},
		},
		Action: func(ctx *cli.Context) error {
			secret, err := auth.SecretFromEnv(secretEnvVarName, os.Getenv, os.Setenv)
			if err != nil {
				return err
			}
			st, err := store.Open(ctx.Context, storeDir, true)
			if err != nil {
				return err
			}
			defer st.Close()
			tokens := auth.NewTokens(auth.Config{
				Secret:   secret,
				Lifetime: time.Duration(lifetimeHours) * time.Hour,
				Issuer:   issuer,
				Audience: audience,
			})
			realm := authapi.NewRealm(tokens, auth.InMemoryIdentityCache())
			handler := taskapi.AsHandler(auth.NewService(st, tokens), task.NewService(st), realm)
			return httpserver.Serve(ctx.Context, bindAddr, handler)
		},
	}
}
