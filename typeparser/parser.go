// Package typeparser extracts type definitions from C header files.
//
// It is not a full C header parser. Supported are:
//   - pre-processing directives: #include "file" and #define NAME <number>
//   - struct/union/enum definitions of all valid formats, nested and anonymous ones included
//   - typedefs of basic types and of known struct/union/enum types
//   - global constants "type name = number;"
//   - one dimension arrays
//
// Every struct/union gets its size computed with a fixed 4 byte alignment.
package typeparser

import (
	"fmt"
	"os"
	"path/filepath"

	"ctypereader/charset"
	"ctypereader/logging"
	"ctypereader/setting"
	"ctypereader/utils"

	mapset "github.com/deckarep/golang-set"
)

// Parser is one parse session. All files parsed by it share one Registry.
type Parser struct {
	reg *Registry
	log logging.Logger

	includePaths    mapset.Set
	includeOrder    []string
	headerPatterns  []*setting.GlobMatcher
	excludePatterns []*setting.GlobMatcher

	anonymous utils.AnonymousNamer

	// directory of the file being parsed, for #include resolution
	curDir string
	// set by the typedef keyword, reset after each top-level statement
	isTypedef bool
}

type Option func(*Parser)

// WithIncludePaths sets the folders searched for header files and #include targets.
func WithIncludePaths(paths ...string) Option {
	return func(p *Parser) {
		for _, path := range paths {
			if p.includePaths.Add(path) {
				p.includeOrder = append(p.includeOrder, path)
			}
		}
	}
}

// WithPatterns sets which files are picked up as headers when searching include paths.
func WithPatterns(headers, excludes []*setting.GlobMatcher) Option {
	return func(p *Parser) {
		p.headerPatterns = headers
		p.excludePatterns = excludes
	}
}

func NewParser(log logging.Logger, opts ...Option) *Parser {
	if log == nil {
		log = logging.Discard
	}
	p := &Parser{
		reg:          NewRegistry(),
		log:          log,
		includePaths: mapset.NewSet(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if len(p.headerPatterns) == 0 {
		m, _ := setting.GlobMatcherCompile("*.h")
		p.headerPatterns = []*setting.GlobMatcher{m}
	}
	return p
}

func (_this *Parser) Registry() *Registry {
	return _this.reg
}

// ParseFiles parses all header files under the include paths.
func (_this *Parser) ParseFiles() {
	for _, dir := range _this.includeOrder {
		for _, file := range _this.FindHeaderFiles(dir) {
			if _, ok := _this.reg.files[file]; !ok {
				_this.reg.files[file] = false
			}
		}
	}
	for _, file := range _this.reg.Files() {
		if err := _this.ParseFile(file); err != nil {
			_this.log.Error("%v", err)
		}
	}
}

// ParseFile parses a header file unless it was parsed before.
// I/O failures and structural errors are returned; statement level errors are only logged.
func (_this *Parser) ParseFile(file string) error {
	file = filepath.Clean(file)
	if _this.reg.files[file] {
		_this.log.Info("File is already processed: %s", file)
		return nil
	}

	content, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to open file - %s: %w", file, err)
	}

	// flag before parsing so that it won't be parsed again through a cyclic #include
	_this.reg.files[file] = true
	_this.log.Debug("Parsing file - %s", file)

	text, err := charset.ToUTF8(content)
	if err != nil {
		_this.log.Warn("Cannot decode %s as UTF-8: %v", file, err)
	}

	src, errs := Preprocess(text)
	for _, e := range errs {
		_this.log.Error("%s: %v", file, e)
	}

	prevDir := _this.curDir
	_this.curDir = filepath.Dir(file)
	defer func() { _this.curDir = prevDir }()

	if err := _this.ParseSource(src); err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	return nil
}

// ParseSource parses preprocessed source, see Preprocess.
func (_this *Parser) ParseSource(src string) error {
	s := NewScanner(src)
	_this.isTypedef = false

	for {
		token, ok := s.Next()
		if !ok {
			return nil
		}

		if len(token) == 1 {
			switch token[0] {
			case '#':
				_this.parsePreProcDirective(s)
			case '{', '}', ';':
				// ignored silently
			default:
				line := s.SkipLine()
				_this.log.Debug("Character '%s' unexpected, ignore the line - %s", token, line)
			}
			continue
		}

		var err error
		switch tokenType := _this.reg.TokenType(token); tokenType {
		case StructKeyword, UnionKeyword:
			err = _this.parseTopLevelStructUnion(tokenType == StructKeyword, s)
		case EnumKeyword:
			err = _this.parseTopLevelEnum(s)
		case TypedefKeyword:
			_this.isTypedef = true
			continue
		case BasicDataType, StructName, UnionName, EnumName:
			if _this.isTypedef {
				_this.parseTypedefAlias(token, s)
			} else if tokenType == BasicDataType {
				// only (const) global variables are supported
				line, _ := s.RestOfLine()
				if !_this.parseAssignExpression(line) {
					_this.log.Debug("Expression not supported - %s %s", token, line)
				}
			} else {
				line := s.SkipLine()
				_this.log.Debug("Ignore global variable - %s", line)
			}
		default:
			line := s.SkipLine()
			_this.log.Debug("Unresolved token <%s>, ignore the line - %s", token, line)
		}
		_this.isTypedef = false

		if err != nil {
			if isStructural(err) {
				return err
			}
			_this.log.Error("%v", err)
		}
	}
}

// parseTypedefAlias handles "typedef <known type> [*]alias;".
func (_this *Parser) parseTypedefAlias(token string, s *Scanner) {
	rest, _ := s.RestOfLine()
	decl, err := _this.ParseDeclaration(token + " " + rest)
	if err != nil {
		_this.log.Error("Bad typedef - %s %s: %v", token, rest, err)
		return
	}
	_this.storeTypedef(decl)
}

// storeTypedef registers the name declared by a typedef as a new type.
func (_this *Parser) storeTypedef(decl Field) {
	if decl.IsPointer || decl.ArrayLen > 0 {
		_this.reg.storeScalar(decl.Name, decl.Size)
		_this.log.Debug("Add typedef %s (%d bytes)", decl.Name, decl.Size)
		return
	}
	if !_this.reg.alias(decl.Name, decl.TypeName) {
		_this.log.Error("%v - typedef %s %s", ErrUnknownType, decl.TypeName, decl.Name)
		return
	}
	_this.log.Debug("Add typedef %s for %s", decl.Name, decl.TypeName)
}
