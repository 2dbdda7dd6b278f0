package cmdflags

import (
	"github.com/lfmonteiro/taskdeck/auth"
	"github.com/urfave/cli/v2"
)

func StoreDir(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "store",
		Aliases:     []string{"s"},
		Usage:       "Path to the directory holding the task database",
		Destination: out,
		Value:       *out,
	}
}

func SecretEnvVar(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = auth.SecretEnvVar
	}
	return &cli.StringFlag{
		Name:        "secret-envvar-name",
		Usage:       "Name of the environment variable that holds the base64 signing secret. The secret itself should not be passed as an argument",
		Value:       *out,
		Destination: out,
	}
}
