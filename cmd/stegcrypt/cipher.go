package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli"

	"github.com/absfs/stegcrypt/internal/host"
	"github.com/absfs/stegcrypt/internal/passphrase"
)

var streamFlag = cli.BoolFlag{
	Name:  "stream, s",
	Usage: "use the segmented stream format for files too large for memory",
}

func cipherCommands(setup setupFunc) []cli.Command {
	fileFlags := []cli.Flag{
		cli.StringFlag{Name: "input, i", Usage: "read from `FILE`"},
		cli.StringFlag{Name: "output, o", Usage: "write to `FILE`"},
		streamFlag,
	}
	batchFlags := []cli.Flag{
		cli.StringFlag{Name: "out-dir, o", Usage: "write results into `DIR`", Value: "."},
	}

	return []cli.Command{
		{
			Name:   "encrypt",
			Usage:  "encrypt a file with a password",
			Flags:  fileFlags,
			Action: action(setup, runEncrypt),
		},
		{
			Name:   "decrypt",
			Usage:  "decrypt a file produced by encrypt",
			Flags:  fileFlags,
			Action: action(setup, runDecrypt),
		},
		{
			Name:  "batch",
			Usage: "encrypt or decrypt many files in parallel",
			Subcommands: []cli.Command{
				{
					Name:      "encrypt",
					Usage:     "encrypt every FILE into DIR/FILE.enc",
					ArgsUsage: "FILE...",
					Flags:     batchFlags,
					Action:    action(setup, batchAction(host.BatchEncrypt)),
				},
				{
					Name:      "decrypt",
					Usage:     "decrypt every FILE.enc into DIR/FILE",
					ArgsUsage: "FILE...",
					Flags:     batchFlags,
					Action:    action(setup, batchAction(host.BatchDecrypt)),
				},
			},
		},
	}
}

func fileArgs(c *cli.Context) (string, string, error) {
	in, err := requireString(c, "input")
	if err != nil {
		return "", "", err
	}
	out, err := requireString(c, "output")
	if err != nil {
		return "", "", err
	}
	return in, out, nil
}

func runEncrypt(c *cli.Context, e *env) error {
	in, out, err := fileArgs(c)
	if err != nil {
		return err
	}
	password, err := e.prompt.GetWithConfirm("Password: ", "Confirm password: ")
	if err != nil {
		return err
	}
	defer passphrase.Zero(password)

	ctx := context.Background()
	var res *host.FileResult
	if c.Bool("stream") {
		res, err = e.svc.EncryptStream(ctx, in, out, password)
	} else {
		res, err = e.svc.EncryptFile(ctx, in, out, password)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "encrypted %s (%s) to %s\n", in, humanize.Bytes(uint64(res.InputBytes)), out)
	return nil
}

func runDecrypt(c *cli.Context, e *env) error {
	in, out, err := fileArgs(c)
	if err != nil {
		return err
	}
	password, err := e.prompt.Get("Password: ")
	if err != nil {
		return err
	}
	defer passphrase.Zero(password)

	ctx := context.Background()
	var res *host.FileResult
	if c.Bool("stream") {
		res, err = e.svc.DecryptStream(ctx, in, out, password)
	} else {
		res, err = e.svc.DecryptFile(ctx, in, out, password)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "decrypted %s to %s (%s)\n", in, out, humanize.Bytes(uint64(res.OutputBytes)))
	return nil
}

func batchAction(mode host.BatchMode) func(*cli.Context, *env) error {
	return func(c *cli.Context, e *env) error {
		files := []string(c.Args())
		if len(files) == 0 {
			return fmt.Errorf("no input files")
		}

		var password []byte
		var err error
		if mode == host.BatchEncrypt {
			password, err = e.prompt.GetWithConfirm("Password: ", "Confirm password: ")
		} else {
			password, err = e.prompt.Get("Password: ")
		}
		if err != nil {
			return err
		}
		defer passphrase.Zero(password)

		results, err := e.svc.Batch(context.Background(), mode, files, c.String("out-dir"), password)
		if err != nil {
			return err
		}

		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
				fmt.Fprintf(e.out, "FAIL %s: %v\n", r.Input, r.Err)
				continue
			}
			fmt.Fprintf(e.out, "ok   %s -> %s\n", r.Input, r.Output)
		}
		e.log.Infof("batch %s: %d ok, %d failed", mode, len(results)-failed, failed)
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed to %s", failed, len(results), mode)
		}
		return nil
	}
}
