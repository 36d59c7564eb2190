package typeparser

import (
	"fmt"
	"strings"

	"ctypereader/utils"
)

// ParseDeclaration parses a variable declaration such as
//
//	unsigned char *array[MAX_SIZE];
//	struct Person boss;
//
// Qualifiers are dropped by the tokenizer and the struct/union/enum keyword must already
// be consumed. A line declaring several variables ("int a, b;") is not supported.
func (_this *Parser) ParseDeclaration(line string) (Field, error) {
	var decl Field

	line = strings.TrimSpace(line)
	if !strings.HasSuffix(line, ";") {
		return decl, fmt.Errorf("%w: missing ';' - %s", ErrBadDeclaration, line)
	}

	tokens := Tokenize(line)
	// even the simplest declaration contains 3 tokens: type var ;
	if len(tokens) < 3 {
		return decl, fmt.Errorf("%w: %s", ErrBadDeclaration, line)
	}

	index := 0
	decl.TypeName = tokens[index]
	// multi-word basic types, e.g. "long long"
	for index+1 < len(tokens) && _this.reg.TokenType(tokens[index+1]) == BasicDataType {
		merged := decl.TypeName + " " + tokens[index+1]
		if _, ok := _this.reg.SizeOf(merged); !ok {
			break
		}
		decl.TypeName = merged
		index++
	}
	index++

	for index < len(tokens) && tokens[index] == "*" {
		decl.IsPointer = true
		index++
	}
	if index >= len(tokens) || len(tokens[index]) == 1 && strings.ContainsAny(tokens[index], TokenDelimiters) {
		return decl, fmt.Errorf("%w: missing variable name - %s", ErrBadDeclaration, line)
	}
	decl.Name = tokens[index]
	index++

	length, known := _this.reg.SizeOf(decl.TypeName)
	switch {
	case decl.IsPointer:
		// pointee type does not matter, it's never followed
		length = utils.WordSize
	case !known:
		return decl, fmt.Errorf("%w - %s", ErrUnknownType, decl.TypeName)
	case length == 0:
		return decl, fmt.Errorf("%w: %s has no size - %s", ErrBadDeclaration, decl.TypeName, line)
	}

	if index < len(tokens) && tokens[index] == "[" {
		if index+2 >= len(tokens) || tokens[index+2] != "]" {
			return decl, fmt.Errorf("%w: unterminated bracket - %s", ErrBadDeclaration, line)
		}
		number, ok := _this.numericToken(tokens[index+1])
		if !ok || number <= 0 {
			return decl, fmt.Errorf("%w - %s", ErrBadArrayBound, tokens[index+1])
		}
		decl.ArrayLen = int(number)
		length *= int(number)
		index += 3
	}

	if index >= len(tokens) || tokens[index] != ";" {
		return decl, fmt.Errorf("%w: unexpected tokens - %s", ErrBadDeclaration, line)
	}

	decl.Size = length
	return decl, nil
}

// parseEnumDeclaration parses one enum member:
//
//	Zhejiang            // last member only
//	Beijing,
//	Shenzhen = <value>  // last member only
//	Shanghai = <value>,
//
// last is the value of the previous member. isLast is true when the member has no trailing comma.
func (_this *Parser) parseEnumDeclaration(line string, last int) (member EnumMember, isLast bool, err error) {
	tokens := Tokenize(line)
	if len(tokens) > 0 && tokens[len(tokens)-1] == ";" {
		tokens = tokens[:len(tokens)-1]
	}

	switch {
	case len(tokens) == 1:
		isLast = true
		member.Value = last + 1
	case len(tokens) == 2 && tokens[1] == ",":
		member.Value = last + 1
	case len(tokens) == 3 && tokens[1] == "=":
		isLast = true
		fallthrough
	case len(tokens) == 4 && tokens[1] == "=" && tokens[3] == ",":
		number, ok := _this.numericToken(tokens[2])
		if !ok {
			return member, false, fmt.Errorf("%w: cannot convert token into a number - %s", ErrBadEnumMember, tokens[2])
		}
		member.Value = int(number)
	default:
		return member, false, fmt.Errorf("%w - %s", ErrBadEnumMember, line)
	}

	member.Label = tokens[0]
	return member, isLast, nil
}

// parseAssignExpression stores a global constant "var = number;".
func (_this *Parser) parseAssignExpression(line string) bool {
	tokens := Tokenize(line)
	if len(tokens) != 4 || tokens[1] != "=" || tokens[3] != ";" {
		return false
	}
	number, ok := _this.numericToken(tokens[2])
	if !ok {
		return false
	}
	_this.reg.constants[tokens[0]] = number
	return true
}

// numericToken resolves a number literal, a #define or a global constant.
func (_this *Parser) numericToken(token string) (int64, bool) {
	if number, ok := utils.ParseNumber(token); ok {
		return number, true
	}
	if number, ok := _this.reg.Constant(token); ok {
		return number, true
	}
	_this.log.Debug("Cannot parse token <%s> into a number", token)
	return 0, false
}
