package users

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lfmonteiro/taskdeck/auth"
	"github.com/lfmonteiro/taskdeck/internal/cmdflags"
	"github.com/lfmonteiro/taskdeck/store"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Manage the accounts allowed to use the task manager",
		Subcommands: []*cli.Command{
			addCmd(),
		},
	}
}

func addCmd() *cli.Command {
	storeDir := "./data"
	username := ""
	return &cli.Command{
		Name:  "add",
		Usage: "Create a new account. The password is read from the first line of stdin rather than taken as an argument",
		Flags: []cli.Flag{
			cmdflags.StoreDir(&storeDir),
			&cli.StringFlag{
				Name:        "username",
				Aliases:     []string{"u"},
				Usage:       "Name of the account to create",
				Destination: &username,
				Required:    true,
			},
		},
		Action: func(ctx *cli.Context) error {
			password, err := readPassword(os.Stdin)
			if err != nil {
				return err
			}
			st, err := store.Open(ctx.Context, storeDir, true)
			if err != nil {
				return err
			}
			defer st.Close()
			svc := auth.NewService(st, nil)
			user, err := svc.Register(ctx.Context, username, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(ctx.App.Writer, "created user %v with id %v\n", user.Username, user.ID)
			return nil
		},
	}
}

func readPassword(in io.Reader) (string, error) {
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("unable to read password from stdin, cause %w", err)
		}
		return "", errors.New("unable to read password from stdin")
	}
	return strings.TrimRight(scanner.Text(), "\r\n"), nil
}
