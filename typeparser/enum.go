package typeparser

import (
	"fmt"
	"strings"
)

func (_this *Parser) parseTopLevelEnum(s *Scanner) error {
	decl, isDecl, err := _this.parseEnum(_this.isTypedef, s)
	if err != nil {
		return err
	}
	if isDecl {
		_this.topLevelDeclaration(decl)
	}
	return nil
}

// parseEnum parses an enum definition or declaration, starting right after the enum keyword.
// It supports the same formats as parseStructUnion.
func (_this *Parser) parseEnum(isTypedef bool, s *Scanner) (Field, bool, error) {
	if decl, ok := _this.peekDeclaration(s); ok {
		return decl, true, nil
	}

	tag, isForward, err := _this.parseBlockStart("enum", s)
	if err != nil || isForward {
		return Field{}, false, err
	}

	members := make([]EnumMember, 0, 8)
	last := -1
	isLast := false
	for {
		token, ok := s.Next()
		if !ok {
			return Field{}, false, fmt.Errorf("%w in enum %s", ErrUnexpectedEOF, tag)
		}
		if token == "}" {
			break
		}

		line := token
		if rest, ok := s.RestOfLine(); ok {
			// "Last }" on one line, leave the brace to the scanner
			if idx := strings.IndexByte(rest, '}'); idx >= 0 {
				s.Seek(s.Pos() - len(rest) + idx)
				rest = rest[:idx]
			}
			line += " " + rest
		}

		if isLast {
			_this.log.Error("%v: missing ',' before %s in enum %s", ErrBadEnumMember, line, tag)
		}
		var member EnumMember
		member, isLast, err = _this.parseEnumDeclaration(line, last)
		if err != nil {
			_this.log.Error("Unresolved enum member in %s: %v", tag, err)
			continue
		}
		_this.log.Debug("Add enum member: %s = %d", member.Label, member.Value)
		members = append(members, member)
		last = member.Value
	}

	store := func(name string) {
		_this.reg.storeEnum(name, members)
		_this.log.Debug("Add enum %s (%d members)", name, len(members))
	}
	return _this.finishDefinition("enum", tag, isTypedef, s, store)
}
