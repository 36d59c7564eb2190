package typeparser

import (
	"strings"

	"ctypereader/utils"
)

// TokenDelimiters ends a token; each of them is a token by itself.
// '_' is not among them since it is part of identifiers.
const TokenDelimiters = " \t#{[(<&|*>)]}?':\",%!=/;+$"

// Scanner is the read position over a preprocessed source.
// Every parsing routine takes the scanner and leaves it after what it consumed.
type Scanner struct {
	src string
	pos int
}

func NewScanner(src string) *Scanner {
	return &Scanner{src: src}
}

func (_this *Scanner) Pos() int {
	return _this.pos
}

// Seek moves the scanner back to a position returned by Pos.
func (_this *Scanner) Seek(pos int) {
	_this.pos = pos
}

func (_this *Scanner) AtEnd() bool {
	return _this.pos >= len(_this.src)
}

// Next returns the next token, crossing line boundaries. Qualifiers are skipped.
// It returns false at the end of the source.
func (_this *Scanner) Next() (string, bool) {
	return _this.next(true)
}

// NextInLine is like Next but never leaves the current logical line.
func (_this *Scanner) NextInLine() (string, bool) {
	return _this.next(false)
}

func (_this *Scanner) next(crossLine bool) (string, bool) {
	for {
		token, ok := _this.rawToken(crossLine)
		if !ok {
			return "", false
		}
		if !utils.IsIgnorable(token) {
			return token, true
		}
	}
}

func (_this *Scanner) rawToken(crossLine bool) (string, bool) {
	end := len(_this.src)
	if !crossLine {
		if p := strings.IndexByte(_this.src[_this.pos:], EOL); p >= 0 {
			end = _this.pos + p
		}
	}

	// skip leading blanks or EOL
	for _this.pos < end && (isBlank(_this.src[_this.pos]) || _this.src[_this.pos] == EOL) {
		_this.pos++
	}
	if _this.pos >= end {
		return "", false
	}

	start := _this.pos
	p := strings.IndexAny(_this.src[start:end], TokenDelimiters)
	switch {
	case p < 0:
		_this.pos = end
	case p == 0:
		_this.pos = start + 1
	default:
		_this.pos = start + p
	}
	return _this.src[start:_this.pos], true
}

// RestOfLine returns what is left of the current logical line and moves to its end.
// It returns false if nothing is left.
func (_this *Scanner) RestOfLine() (string, bool) {
	if _this.AtEnd() || _this.src[_this.pos] == EOL {
		return "", false
	}
	p := strings.IndexByte(_this.src[_this.pos:], EOL)
	var line string
	if p < 0 {
		line = _this.src[_this.pos:]
		_this.pos = len(_this.src)
	} else {
		line = _this.src[_this.pos : _this.pos+p]
		_this.pos += p
	}
	if strings.TrimSpace(line) == "" {
		return "", false
	}
	return line, true
}

// NextLine returns the whole logical line after the current one and moves to its end.
func (_this *Scanner) NextLine() (string, bool) {
	p := strings.IndexByte(_this.src[_this.pos:], EOL)
	if p < 0 {
		_this.pos = len(_this.src)
		return "", false
	}
	_this.pos += p + 1
	return _this.RestOfLine()
}

// PeekLine returns the rest of the current line, or the next line when the current one
// is exhausted, without moving.
func (_this *Scanner) PeekLine() (string, bool) {
	start := _this.pos
	defer _this.Seek(start)
	if line, ok := _this.RestOfLine(); ok {
		return line, true
	}
	return _this.NextLine()
}

// SkipLine drops the rest of the current logical line and returns the whole line for diagnostics.
func (_this *Scanner) SkipLine() string {
	if _this.AtEnd() {
		return ""
	}
	begin := strings.LastIndexByte(_this.src[:_this.pos], EOL) + 1
	p := strings.IndexByte(_this.src[_this.pos:], EOL)
	if p < 0 {
		_this.pos = len(_this.src)
		return _this.src[begin:]
	}
	end := _this.pos + p
	_this.pos = end + 1
	return _this.src[begin:end]
}

// Tokenize splits one logical line into tokens, qualifiers dropped.
func Tokenize(line string) []string {
	s := NewScanner(line)
	tokens := make([]string, 0, 8)
	for {
		token, ok := s.Next()
		if !ok {
			return tokens
		}
		tokens = append(tokens, token)
	}
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\v' || c == '\f'
}
