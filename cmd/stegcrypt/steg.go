package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli"

	"github.com/absfs/stegcrypt/steg"
)

var (
	inputFlag = cli.StringFlag{
		Name:  "input, i",
		Usage: "read the image from `FILE`",
	}
	outputFlag = cli.StringFlag{
		Name:  "output, o",
		Usage: "write the result to `FILE`",
	}
)

func stegCommands(setup setupFunc) []cli.Command {
	return []cli.Command{
		{
			Name:  "embed",
			Usage: "hide a message in an image and write it as PNG",
			Flags: []cli.Flag{
				inputFlag,
				outputFlag,
				cli.StringFlag{
					Name:  "message, m",
					Usage: "the message to hide",
				},
				cli.StringFlag{
					Name:  "file, f",
					Usage: "read the message from `FILE`",
				},
			},
			Action: action(setup, runEmbed),
		},
		{
			Name:   "extract",
			Usage:  "print the message hidden in an image",
			Flags:  []cli.Flag{inputFlag},
			Action: action(setup, runExtract),
		},
		{
			Name:   "check",
			Usage:  "report whether an image carries a hidden message",
			Flags:  []cli.Flag{inputFlag},
			Action: action(setup, runCheck),
		},
		{
			Name:   "capacity",
			Usage:  "print how much text an image can hide",
			Flags:  []cli.Flag{inputFlag},
			Action: action(setup, runCapacity),
		},
		{
			Name:  "inspect",
			Usage: "print best-effort statistics of the color LSBs",
			Flags: []cli.Flag{
				inputFlag,
				cli.IntFlag{
					Name:  "channels, n",
					Usage: "examine the first `N` channels (0 for all)",
				},
			},
			Action: action(setup, runInspect),
		},
	}
}

func runEmbed(c *cli.Context, e *env) error {
	in, err := requireString(c, "input")
	if err != nil {
		return err
	}
	out, err := requireString(c, "output")
	if err != nil {
		return err
	}

	message := c.String("message")
	if path := c.String("file"); path != "" {
		if message != "" {
			return fmt.Errorf("use either --message or --file, not both")
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		message = string(data)
	}
	if !c.IsSet("message") && !c.IsSet("file") {
		return fmt.Errorf("missing required flag --message or --file")
	}

	res, err := e.svc.EmbedMessage(context.Background(), in, out, message)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "embedded %s bytes into %s (%dx%d, capacity %s bytes)\n",
		humanize.Comma(int64(res.MessageBytes)), out, res.Width, res.Height, humanize.Comma(int64(res.MaxBytes)))
	return nil
}

func runExtract(c *cli.Context, e *env) error {
	in, err := requireString(c, "input")
	if err != nil {
		return err
	}
	msg, err := e.svc.ExtractMessage(context.Background(), in)
	if err != nil {
		if steg.IsNotFoundError(err) {
			return fmt.Errorf("no hidden message found in %s: %v", in, err)
		}
		return err
	}
	fmt.Fprintln(e.out, msg)
	return nil
}

func runCheck(c *cli.Context, e *env) error {
	in, err := requireString(c, "input")
	if err != nil {
		return err
	}
	found, err := e.svc.HasHiddenMessage(context.Background(), in)
	if err != nil {
		return err
	}
	if found {
		fmt.Fprintf(e.out, "%s: hidden message found\n", in)
	} else {
		fmt.Fprintf(e.out, "%s: no hidden message\n", in)
	}
	return nil
}

func runCapacity(c *cli.Context, e *env) error {
	in, err := requireString(c, "input")
	if err != nil {
		return err
	}
	info, err := e.svc.Capacity(context.Background(), in)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%s: %dx%d %s, %s bits, up to %s bytes of text\n",
		in, info.Width, info.Height, info.Format, humanize.Comma(int64(info.Bits)), humanize.Comma(int64(info.MaxBytes)))
	return nil
}

func runInspect(c *cli.Context, e *env) error {
	in, err := requireString(c, "input")
	if err != nil {
		return err
	}
	stats, err := e.svc.InspectLSB(context.Background(), in, c.Int("channels"))
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "channels: %s, ones: %s, ratio: %.4f\n",
		humanize.Comma(int64(stats.Channels)), humanize.Comma(int64(stats.Ones)), stats.Ratio)
	fmt.Fprintln(e.out, "note: this is a heuristic only, use extract for a definitive answer")
	return nil
}
