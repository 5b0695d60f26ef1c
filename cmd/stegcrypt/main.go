// Command stegcrypt hides text in images and encrypts files with a password.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"

	"github.com/absfs/stegcrypt/internal/config"
	"github.com/absfs/stegcrypt/internal/host"
	"github.com/absfs/stegcrypt/internal/logger"
	"github.com/absfs/stegcrypt/internal/passphrase"
)

const version = "0.1.0"

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "stegcrypt: %v\n", err)
		os.Exit(1)
	}
}

// env is what every command needs, built from the global flags.
type env struct {
	log    logger.Logger
	svc    *host.Service
	prompt *passphrase.Prompter
	out    io.Writer
}

func newApp(stdout, stderr io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "stegcrypt"
	app.Usage = "Hide messages in images and encrypt files with a password"
	app.Version = version
	app.Writer = stdout
	app.ErrWriter = stderr
	app.Flags = getFlags()

	setup := func(c *cli.Context) (*env, error) {
		cfg, err := config.NewConfig(c.GlobalString("config"))
		if err != nil {
			return nil, err
		}
		if c.GlobalIsSet("level") {
			level, err := config.GetLogLevel(c.GlobalString("level"))
			if err != nil {
				return nil, err
			}
			cfg.LogLevel = level
		}

		log := logger.NewLogger(cfg.LogLevel)
		log.SetWriter(stderr)

		svc, err := host.New(host.NewDiskStorage(), cfg, log)
		if err != nil {
			return nil, err
		}
		return &env{
			log:    log,
			svc:    svc,
			prompt: passphrase.New(stderr),
			out:    stdout,
		}, nil
	}

	app.Commands = append(stegCommands(setup), cipherCommands(setup)...)
	return app
}

type setupFunc func(*cli.Context) (*env, error)

// action adapts a command body to cli.ActionFunc.
func action(setup setupFunc, run func(*cli.Context, *env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := setup(c)
		if err != nil {
			return err
		}
		return run(c, e)
	}
}

func getFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "load configuration from `FILE`",
		},
		cli.StringFlag{
			Name:  "level, l",
			Usage: "logging level [debug|info|warn|error]",
			Value: "info",
		},
	}
}

func requireString(c *cli.Context, name string) (string, error) {
	v := c.String(name)
	if v == "" {
		return "", fmt.Errorf("missing required flag --%s", name)
	}
	return v, nil
}
