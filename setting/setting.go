// Package setting loads the ini configuration of ctypereader.
//
//	[log]
//	LEVEL = info
//
//	[parser]
//	INCLUDE_PATHS = include,third_party/include
//	HEADER_PATTERNS = *.h
//	EXCLUDE_PATTERNS = *_test.h
//
//	[decoder]
//	BIG_ENDIAN = false
//	UNION = false
//
// Command line flags take precedence over values read here.
package setting

import (
	"fmt"

	"ctypereader/logging"

	ini "gopkg.in/ini.v1"
)

type Settings struct {
	LogLevel logging.Level

	IncludePaths    []string
	HeaderPatterns  []string
	ExcludePatterns []string

	BigEndian bool
	Union     bool
}

// Default returns the settings used when no config file is given.
func Default() *Settings {
	return &Settings{
		LogLevel:       logging.INFO,
		HeaderPatterns: []string{"*.h"},
	}
}

// Load reads settings from an ini file path or raw ini bytes.
func Load(source any) (*Settings, error) {
	cfg, err := ini.Load(source)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return loadFrom(cfg), nil
}

func loadFrom(cfg *ini.File) *Settings {
	s := Default()

	sec := cfg.Section("log")
	s.LogLevel = logging.LevelFromString(sec.Key("LEVEL").MustString(s.LogLevel.String()))

	sec = cfg.Section("parser")
	s.IncludePaths = sec.Key("INCLUDE_PATHS").Strings(",")
	if sec.HasKey("HEADER_PATTERNS") {
		s.HeaderPatterns = sec.Key("HEADER_PATTERNS").Strings(",")
	}
	s.ExcludePatterns = sec.Key("EXCLUDE_PATTERNS").Strings(",")

	sec = cfg.Section("decoder")
	s.BigEndian = sec.Key("BIG_ENDIAN").MustBool(false)
	s.Union = sec.Key("UNION").MustBool(false)
	return s
}

// Matchers compiles the header and exclude patterns.
func (s *Settings) Matchers() (headers, excludes []*GlobMatcher, err error) {
	headers, err = CompileGlobs(s.HeaderPatterns)
	if err != nil {
		return nil, nil, fmt.Errorf("bad HEADER_PATTERNS: %w", err)
	}
	excludes, err = CompileGlobs(s.ExcludePatterns)
	if err != nil {
		return nil, nil, fmt.Errorf("bad EXCLUDE_PATTERNS: %w", err)
	}
	return headers, excludes, nil
}
