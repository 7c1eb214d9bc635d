package main

import (
	"fmt"
	"os"

	"github.com/dargueta/fatboot/inspector"
	"github.com/dargueta/fatboot/logger"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	cli := cli.App{
		Name:  "fatboot",
		Usage: "Decode the boot sector of FAT12/FAT16 disk images",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log debug messages to stderr",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "dump",
				Usage:     "Print the boot sector of an image",
				Action:    dumpImage,
				ArgsUsage: "[IMAGE_FILE]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   string(inspector.FormatText),
						Usage:   "output format: text, summary, json, or csv",
					},
					&cli.UintFlag{
						Name:  "sector-size",
						Value: inspector.DefaultSectorSize,
						Usage: "bytes per sector used to size the FAT region",
					},
					&cli.BoolFlag{
						Name:  "fat",
						Usage: "also print the raw FAT region following the boot sector",
					},
					&cli.BoolFlag{
						Name:  "verify-fats",
						Usage: "check that every copy of the FAT is identical",
					},
				},
			},
			{
				Name:   "layout",
				Usage:  "Print the boot sector field table",
				Action: printLayout,
			},
		},
	}

	err := cli.Run(os.Args)
	if err != nil {
		log, logErr := logger.New(false)
		if logErr != nil {
			fmt.Fprintf(os.Stderr, "fatal error: %s\n", err.Error())
			os.Exit(1)
		}
		log.Fatal("fatal error", zap.Error(err))
	}
}

func dumpImage(context *cli.Context) error {
	log, err := logger.New(context.Bool("verbose"))
	if err != nil {
		return err
	}
	defer log.Sync()

	format, err := inspector.ParseFormat(context.String("format"))
	if err != nil {
		return err
	}

	options := inspector.DefaultOptions()
	if context.Args().Present() {
		options.ImagePath = context.Args().First()
	}
	options.SectorSize = context.Uint("sector-size")
	options.ReadFATRegion = context.Bool("fat")
	options.VerifyFATCopies = context.Bool("verify-fats")
	options.Logger = log

	report, err := inspector.Inspect(options)
	if err != nil {
		return err
	}

	err = inspector.WriteReport(context.App.Writer, report, format)
	if err != nil {
		return err
	}

	if report.FATCopies != nil {
		err = report.FATCopies.Verify()
		if err != nil {
			return err
		}
		log.Info("all FAT copies match", zap.Int("copies", report.FATCopies.Len()))
	}
	return nil
}

func printLayout(context *cli.Context) error {
	return inspector.WriteLayout(context.App.Writer)
}
