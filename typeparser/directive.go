package typeparser

import (
	"os"
	"path/filepath"
	"strings"
)

// parsePreProcDirective handles the line after a '#'. Only these directives are supported:
//
//	#include "<header file>"
//	#define <macro name> <number>
//
// Others are skipped. An included header file is parsed right away so that the types it
// defines are known to the rest of the including file.
func (_this *Parser) parsePreProcDirective(s *Scanner) {
	token, ok := s.NextInLine()
	if !ok {
		s.SkipLine()
		return
	}

	switch token {
	case "include":
		line, _ := s.RestOfLine()
		s.SkipLine()
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "\"") {
			// <...> system headers are not searched
			_this.log.Info("Skip header file included by <> - %s", line)
			return
		}
		name := strings.Trim(line, "\"")
		if end := strings.IndexByte(line[1:], '"'); end >= 0 {
			name = line[1 : end+1]
		}
		file, found := _this.resolveInclude(name)
		if !found {
			_this.log.Error("%v: cannot find included file - %s", ErrBadDirective, name)
			return
		}
		if err := _this.ParseFile(file); err != nil {
			_this.log.Error("%v", err)
		}
	case "define":
		_this.parseDefine(s)
	default:
		line := s.SkipLine()
		_this.log.Info("Skip unsupported pre-processing line - %s", line)
	}
}

// parseDefine stores "#define NAME <number>"; the number may be wrapped in parentheses.
func (_this *Parser) parseDefine(s *Scanner) {
	name, ok := s.NextInLine()
	if !ok {
		line := s.SkipLine()
		_this.log.Error("%v - %s", ErrBadDirective, line)
		return
	}

	var value []string
	for {
		token, ok := s.NextInLine()
		if !ok {
			break
		}
		if token != "(" && token != ")" {
			value = append(value, token)
		}
	}
	line := s.SkipLine()

	if len(value) == 1 {
		if number, ok := _this.numericToken(value[0]); ok {
			_this.reg.constants[name] = number
			return
		}
	}
	_this.log.Debug("Ignore define - %s", line)
}

// resolveInclude looks for name next to the including file, then in the include paths.
func (_this *Parser) resolveInclude(name string) (string, bool) {
	if filepath.IsAbs(name) {
		return name, fileExists(name)
	}
	candidates := make([]string, 0, len(_this.includeOrder)+1)
	if _this.curDir != "" {
		candidates = append(candidates, filepath.Join(_this.curDir, name))
	}
	for _, dir := range _this.includeOrder {
		candidates = append(candidates, filepath.Join(dir, name))
	}
	for _, c := range candidates {
		if fileExists(c) {
			return filepath.Clean(c), true
		}
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
