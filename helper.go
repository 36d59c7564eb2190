package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"ctypereader/datareader"
	"ctypereader/logging"
	"ctypereader/setting"
	"ctypereader/typeparser"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

// loadSettings reads the config file if one is given; flags override it.
func loadSettings(c *cli.Context) (*setting.Settings, error) {
	s := setting.Default()
	if path := c.String("config"); path != "" {
		var err error
		if s, err = setting.Load(path); err != nil {
			return nil, err
		}
	}
	if c.IsSet("log-level") {
		s.LogLevel = logging.LevelFromString(c.String("log-level"))
	}
	s.IncludePaths = append(s.IncludePaths, c.StringSlice("include")...)
	if c.IsSet("union") {
		s.Union = c.Bool("union")
	}
	if c.IsSet("big-endian") {
		s.BigEndian = c.Bool("big-endian")
	}
	return s, nil
}

func newLogger(s *setting.Settings) logging.Logger {
	return logging.NewConsoleLogger(os.Stderr, s.LogLevel)
}

// ParseHelper parses every header file under the include paths.
func ParseHelper(s *setting.Settings, log logging.Logger) (*typeparser.Registry, error) {
	if len(s.IncludePaths) == 0 {
		return nil, errors.New("no include path given")
	}
	headers, excludes, err := s.Matchers()
	if err != nil {
		return nil, err
	}

	p := typeparser.NewParser(log,
		typeparser.WithIncludePaths(s.IncludePaths...),
		typeparser.WithPatterns(headers, excludes))
	p.ParseFiles()

	reg := p.Registry()
	log.Info("Parsed %d files: %d structs, %d unions, %d enums",
		len(reg.Files()), len(reg.StructNames()), len(reg.UnionNames()), len(reg.EnumNames()))
	return reg, nil
}

// DumpHelper writes the types of reg as text, json or yaml.
func DumpHelper(reg *typeparser.Registry, format, output string) error {
	snap := reg.Snapshot()
	var write func(io.Writer) error
	switch strings.ToLower(format) {
	case "", "text":
		write = snap.WriteText
	case "json":
		write = snap.WriteJSON
	case "yaml", "yml":
		write = snap.WriteYAML
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return writeOutput(output, write)
}

// DecodeHelper renders the dump file bin as typeName.
func DecodeHelper(reg *typeparser.Registry, s *setting.Settings, typeName, bin, output string, log logging.Logger) error {
	reader, err := datareader.NewReaderFromFile(reg, bin,
		datareader.WithBigEndian(s.BigEndian),
		datareader.WithLogger(log))
	if err != nil {
		return err
	}
	defer reader.Close()

	text, err := reader.Render(typeName, s.Union)
	if err != nil {
		return err
	}
	log.Info("Decoded %s of %s", humanize.Bytes(uint64(reader.Size())), bin)

	return writeOutput(output, func(w io.Writer) error {
		_, err := io.WriteString(w, text)
		return err
	})
}

// writeOutput writes to the file path, or to stdout for "" and "-".
func writeOutput(path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(os.Stdout)
	}
	create, err := os.Create(path)
	if err != nil {
		return err
	}
	defer create.Close()
	return write(create)
}
