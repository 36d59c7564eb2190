package typeparser

import (
	"errors"
	"fmt"
	"strings"
)

func kindName(isStruct bool) string {
	if isStruct {
		return "struct"
	}
	return "union"
}

func (_this *Parser) parseTopLevelStructUnion(isStruct bool, s *Scanner) error {
	decl, isDecl, err := _this.parseStructUnion(isStruct, _this.isTypedef, s)
	if err != nil {
		return err
	}
	if isDecl {
		_this.topLevelDeclaration(decl)
	}
	return nil
}

// topLevelDeclaration handles a declaration returned for a top-level statement:
// a typedef of a known type, or a global variable which is of no interest.
func (_this *Parser) topLevelDeclaration(decl Field) {
	if _this.isTypedef {
		_this.storeTypedef(decl)
		return
	}
	_this.log.Debug("Ignore global variable - %s", decl)
}

// parseStructUnion parses a struct/union definition or declaration, starting right
// after the struct or union keyword. It is called recursively for nested types.
//
// Supported formats:
//
//  1. type definition: typedef <type> [<type_name>] {....} <type_alias>;
//  2. type definition:         <type> <type_name> {....};
//  3. var declaration:         <type> <type_name> {....} <var>;
//  4. var declaration:         <type>             {....} <var>;   // anonymous type
//  5. var declaration:         <type> <type_name> <var>;          // type_name is defined elsewhere
//
// where <type> is either "struct" or "union" and <var> can be as complicated as "*array[MAX_SIZE]".
//
// For formats 3-5 isDecl is true and decl is the declared variable.
func (_this *Parser) parseStructUnion(isStruct, isTypedef bool, s *Scanner) (decl Field, isDecl bool, err error) {
	kind := kindName(isStruct)

	if decl, ok := _this.peekDeclaration(s); ok {
		return decl, true, nil
	}

	tag, isForward, err := _this.parseBlockStart(kind, s)
	if err != nil || isForward {
		return decl, false, err
	}

	members := make([]Field, 0, 8)
	for {
		token, ok := s.Next()
		if !ok {
			return decl, false, fmt.Errorf("%w in %s %s", ErrUnexpectedEOF, kind, tag)
		}
		if token == "}" {
			break
		}

		switch token {
		case ";":
			continue
		case "#":
			_this.parsePreProcDirective(s)
			continue
		}

		var member Field
		var hasMember bool
		switch tokenType := _this.reg.TokenType(token); tokenType {
		case StructKeyword, UnionKeyword:
			member, hasMember, err = _this.parseStructUnion(tokenType == StructKeyword, false, s)
		case EnumKeyword:
			member, hasMember, err = _this.parseEnum(false, s)
		default:
			member, err = _this.parseMember(token, s)
			hasMember = err == nil
		}
		if err != nil {
			if isStructural(err) {
				return decl, false, err
			}
			_this.log.Error("Unresolved %s member declaration syntax in %s: %v", kind, tag, err)
			err = nil
			continue
		}
		if hasMember {
			_this.log.Debug("Add member: %s", member.Name)
			members = append(members, member)
		}
	}

	store := func(name string) {
		_this.storeStructUnion(isStruct, name, members)
	}
	return _this.finishDefinition(kind, tag, isTypedef, s, store)
}

// parseMember parses a plain member declaration whose first token is already read.
func (_this *Parser) parseMember(token string, s *Scanner) (Field, error) {
	rest, _ := s.RestOfLine()
	line := strings.TrimSpace(token + " " + rest)
	if strings.HasSuffix(line, ",") {
		// "int a, b;" was split by the lexer; only the first variable is kept
		_this.log.Debug("Only the first variable is kept - %s", line)
		line = strings.TrimSuffix(line, ",") + ";"
	}
	return _this.ParseDeclaration(line)
}

// peekDeclaration checks whether the statement is a mere declaration of a known type.
// The scanner only moves when it is.
func (_this *Parser) peekDeclaration(s *Scanner) (Field, bool) {
	line, ok := s.PeekLine()
	if !ok {
		return Field{}, false
	}
	decl, err := _this.ParseDeclaration(line)
	if err != nil {
		return Field{}, false
	}
	takeLine(s)
	return decl, true
}

// parseBlockStart reads "{" or "<type_name> {". A forward declaration "<type_name>;" is skipped.
func (_this *Parser) parseBlockStart(kind string, s *Scanner) (tag string, isForward bool, err error) {
	token, ok := s.Next()
	if !ok {
		return "", false, fmt.Errorf("%w after %s keyword", ErrUnexpectedEOF, kind)
	}
	if token == "{" {
		return "", false, nil
	}

	tag = token
	token, ok = s.Next()
	if !ok {
		return "", false, fmt.Errorf("%w after %s %s", ErrUnexpectedEOF, kind, tag)
	}
	switch token {
	case "{":
		return tag, false, nil
	case ";":
		_this.log.Debug("Forward declaration - %s %s", kind, tag)
		return tag, true, nil
	}
	return "", false, fmt.Errorf("%w: expect '{' after %s %s, got '%s'", ErrUnbalancedBlock, kind, tag, token)
}

// finishDefinition handles what comes after the closing '}' and stores the type with store.
func (_this *Parser) finishDefinition(kind, tag string, isTypedef bool, s *Scanner, store func(name string)) (Field, bool, error) {
	rest, ok := takeLine(s)
	if !ok {
		return Field{}, false, fmt.Errorf("%w after the block of %s %s", ErrUnexpectedEOF, kind, tag)
	}
	rest = terminate(rest)
	tokens := Tokenize(rest)

	if isTypedef {
		// format 1
		if len(tokens) == 2 && isIdentifier(tokens[0]) && tokens[1] == ";" {
			alias := tokens[0]
			store(alias)
			// when the type name differs from the alias, keep a copy in case it's used elsewhere
			if tag != "" && tag != alias {
				_this.reg.alias(tag, alias)
			}
			return Field{}, false, nil
		}
		// typedef of a pointer or an array to the type
		if tag == "" {
			tag = _this.anonymous.Next()
		}
		store(tag)
		decl, err := _this.ParseDeclaration(tag + " " + rest)
		if err != nil {
			return Field{}, false, fmt.Errorf("bad typedef of %s %s: %w", kind, tag, err)
		}
		_this.storeTypedef(decl)
		return Field{}, false, nil
	}

	if len(tokens) == 1 && tokens[0] == ";" {
		if tag != "" {
			// format 2
			store(tag)
			return Field{}, false, nil
		}
		tag = _this.anonymous.Next()
		store(tag)
		if kind == "enum" {
			// only declares the labels, takes no room in the enclosing type
			return Field{}, false, nil
		}
		// unnamed member, its fields belong to the enclosing type
		size, _ := _this.reg.SizeOf(tag)
		return Field{TypeName: tag, Size: size}, true, nil
	}

	// format 3 or 4
	if tag == "" {
		tag = _this.anonymous.Next()
	}
	store(tag)

	// make a declaration by adding <type_name> before <var>
	decl, err := _this.ParseDeclaration(tag + " " + rest)
	if err != nil {
		return Field{}, false, fmt.Errorf("bad syntax for %s type of variable declaration after {} block: %w", kind, err)
	}
	return decl, true, nil
}

// storeStructUnion computes the layout of the members and registers the type.
func (_this *Parser) storeStructUnion(isStruct bool, name string, members []Field) {
	if !isStruct {
		size := CalcUnionSize(members)
		_this.reg.storeUnion(name, members, size)
		_this.log.Debug("Add union %s (%d bytes)", name, size)
		return
	}

	padded, size, err := PadStructMembers(members)
	if err != nil {
		if errors.Is(err, ErrUnsupportedArrayLayout) {
			_this.log.Warn("struct %s: %v", name, err)
		} else {
			_this.log.Error("struct %s: %v", name, err)
		}
	}
	_this.reg.storeStruct(name, padded, size)
	_this.log.Debug("Add struct %s (%d bytes)", name, size)
}

// takeLine returns the rest of the current line, or the next line if the current one is exhausted.
func takeLine(s *Scanner) (string, bool) {
	if line, ok := s.RestOfLine(); ok {
		return line, true
	}
	return s.NextLine()
}

// terminate turns a statement split at ',' by the lexer into one ending with ';'.
func terminate(line string) string {
	line = strings.TrimSpace(line)
	if strings.HasSuffix(line, ",") {
		return strings.TrimSuffix(line, ",") + ";"
	}
	return line
}

func isStructural(err error) bool {
	return errors.Is(err, ErrUnbalancedBlock) || errors.Is(err, ErrUnexpectedEOF)
}

func isIdentifier(token string) bool {
	if token == "" {
		return false
	}
	for i, c := range token {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
