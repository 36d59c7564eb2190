package typeparser

import (
	"fmt"
	"strings"
)

// EOL delimits the logical lines of a preprocessed source.
const EOL = '$'

// Preprocess flattens the text of one file into a stream of logical lines delimited by EOL.
// Blank lines and comments are dropped, wrapped lines merged and compound statements split.
// The returned errors are diagnostics; the source is still usable.
func Preprocess(text string) (string, []error) {
	var errs []error
	lines := make([]string, 0, 64)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	lines, err := stripComments(lines)
	if err != nil {
		errs = append(errs, err)
	}
	lines, err = wrapLines(lines)
	if err != nil {
		errs = append(errs, err)
	}
	return mergeAllLines(lines), errs
}

// stripComments removes line comments and comment blocks.
// Comment markers inside quoted strings are not recognized.
func stripComments(lines []string) ([]string, error) {
	out := make([]string, 0, len(lines))
	inBlock := false
	blockLine := 0
	for i, line := range lines {
		var sb strings.Builder
		rest := line
		for rest != "" {
			if inBlock {
				end := strings.Index(rest, "*/")
				if end < 0 {
					rest = ""
					break
				}
				rest = rest[end+2:]
				inBlock = false
				continue
			}
			start := strings.Index(rest, "/")
			if start < 0 || start == len(rest)-1 {
				sb.WriteString(rest)
				break
			}
			switch rest[start+1] {
			case '/':
				sb.WriteString(rest[:start])
				rest = ""
			case '*':
				sb.WriteString(rest[:start])
				rest = rest[start+2:]
				inBlock = true
				blockLine = i + 1
			default:
				sb.WriteString(rest[:start+1])
				rest = rest[start+1:]
			}
		}
		if s := strings.TrimSpace(sb.String()); s != "" {
			out = append(out, s)
		}
	}
	if inBlock {
		return out, fmt.Errorf("%w (opened on line %d)", ErrUnclosedComment, blockLine)
	}
	return out, nil
}

// wrapLines merges a line ending in '\' with the line after it.
func wrapLines(lines []string) ([]string, error) {
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		for strings.HasSuffix(line, "\\") {
			line = strings.TrimRight(strings.TrimSuffix(line, "\\"), " \t")
			if i+1 >= len(lines) {
				if line != "" {
					out = append(out, line)
				}
				return out, ErrDanglingContinuation
			}
			i++
			line += " " + lines[i]
		}
		out = append(out, line)
	}
	return out, nil
}

// mergeAllLines joins lines with EOL. Lines other than directives are split
// after every ',' or ';' that does not end the line.
func mergeAllLines(lines []string) string {
	var sb strings.Builder
	for _, line := range lines {
		if line[0] == '#' {
			sb.WriteString(line)
			sb.WriteByte(EOL)
			continue
		}
		for {
			pos := strings.IndexAny(line, ",;")
			if pos < 0 || pos == len(line)-1 {
				break
			}
			part := strings.TrimSpace(line[:pos+1])
			sb.WriteString(part)
			sb.WriteByte(EOL)
			line = strings.TrimSpace(line[pos+1:])
			if line == "" {
				break
			}
		}
		if line != "" {
			sb.WriteString(line)
			sb.WriteByte(EOL)
		}
	}
	return sb.String()
}
