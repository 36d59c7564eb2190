package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func includeFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:    "include",
		Aliases: []string{"I"},
		Usage:   "folder to search header files in, can be repeated",
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "output",
		Aliases:     []string{"o"},
		Usage:       "output file path",
		Value:       "-",
		DefaultText: "stdout",
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "ctypereader",
		Usage: "read C type definitions from header files and decode memory dumps with them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "ini config file",
			},
			&cli.StringFlag{
				Name:        "log-level",
				Aliases:     []string{"l"},
				Usage:       "error, warn, info or debug",
				Value:       "info",
				DefaultText: "info",
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "parse",
				Aliases: []string{"p"},
				Usage:   "parse header files and dump the types found",
				Flags: []cli.Flag{
					includeFlag(),
					&cli.StringFlag{
						Name:        "format",
						Aliases:     []string{"f"},
						Usage:       "text, json or yaml",
						Value:       "text",
						DefaultText: "text",
					},
					outputFlag(),
				},
				Action: func(c *cli.Context) error {
					s, err := loadSettings(c)
					if err != nil {
						return err
					}
					reg, err := ParseHelper(s, newLogger(s))
					if err != nil {
						return err
					}
					return DumpHelper(reg, c.String("format"), c.String("output"))
				},
			},
			{
				Name:    "decode",
				Aliases: []string{"d"},
				Usage:   "decode a memory dump as a struct or union",
				Flags: []cli.Flag{
					includeFlag(),
					&cli.StringFlag{
						Name:     "type",
						Aliases:  []string{"t"},
						Usage:    "name of the struct or union",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "bin",
						Aliases:  []string{"b"},
						Usage:    "memory dump file, may be .gz, .zst or .xz compressed",
						Required: true,
					},
					&cli.BoolFlag{
						Name:    "union",
						Aliases: []string{"u"},
						Usage:   "the type is a union",
					},
					&cli.BoolFlag{
						Name:  "big-endian",
						Usage: "read values most-significant byte first",
					},
					outputFlag(),
				},
				Action: func(c *cli.Context) error {
					s, err := loadSettings(c)
					if err != nil {
						return err
					}
					logger := newLogger(s)
					reg, err := ParseHelper(s, logger)
					if err != nil {
						return err
					}
					return DecodeHelper(reg, s, c.String("type"), c.String("bin"), c.String("output"), logger)
				},
			},
		},
	}
}

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
