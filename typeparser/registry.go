package typeparser

import (
	"sort"

	"ctypereader/utils"

	mapset "github.com/deckarep/golang-set"
)

// TokenType classifies a token against the keywords and the known types.
type TokenType int

const (
	UnresolvedToken TokenType = iota

	StructKeyword
	UnionKeyword
	EnumKeyword
	TypedefKeyword

	BasicDataType
	Qualifier

	StructName
	UnionName
	EnumName
)

var keywords = map[string]TokenType{
	"struct":  StructKeyword,
	"union":   UnionKeyword,
	"enum":    EnumKeyword,
	"typedef": TypedefKeyword,
}

// Registry is the set of types and numeric constants collected by one parse session.
// It is filled by the Parser and read-only afterwards.
type Registry struct {
	basicTypes mapset.Set

	// size of basic types, typedef'd scalars and struct/union types
	// enums all have utils.IntSize and are not stored here
	sizes map[string]int

	structs map[string][]Field
	unions  map[string][]Field
	enums   map[string][]EnumMember

	// #define and global constants with integer values
	constants map[string]int64

	// header files, true once parsed
	files map[string]bool
}

func NewRegistry() *Registry {
	r := &Registry{
		basicTypes: utils.BasicTypes(),
		sizes:      make(map[string]int),
		structs:    make(map[string][]Field),
		unions:     make(map[string][]Field),
		enums:      make(map[string][]EnumMember),
		constants:  make(map[string]int64),
		files:      make(map[string]bool),
	}
	for _, name := range r.basicTypes.ToSlice() {
		size, _ := utils.BasicTypeSize(name.(string))
		r.sizes[name.(string)] = size
	}
	return r
}

// TokenType returns the kind of token, keywords first, then basic types, then user types.
func (_this *Registry) TokenType(token string) TokenType {
	if t, ok := keywords[token]; ok {
		return t
	}
	if utils.IsQualifier(token) {
		return Qualifier
	}
	if _this.basicTypes.Contains(token) {
		return BasicDataType
	}
	if _, ok := _this.structs[token]; ok {
		return StructName
	}
	if _, ok := _this.unions[token]; ok {
		return UnionName
	}
	if _, ok := _this.enums[token]; ok {
		return EnumName
	}
	return UnresolvedToken
}

// SizeOf returns the size of a data type in bytes.
func (_this *Registry) SizeOf(name string) (int, bool) {
	if size, ok := _this.sizes[name]; ok {
		return size, true
	}
	if _, ok := _this.enums[name]; ok {
		return utils.IntSize, true
	}
	return 0, false
}

// LookupStruct returns a copy of the members of a struct, padding fields included.
func (_this *Registry) LookupStruct(name string) ([]Field, bool) {
	members, ok := _this.structs[name]
	if !ok {
		return nil, false
	}
	return append([]Field(nil), members...), true
}

func (_this *Registry) LookupUnion(name string) ([]Field, bool) {
	members, ok := _this.unions[name]
	if !ok {
		return nil, false
	}
	return append([]Field(nil), members...), true
}

func (_this *Registry) LookupEnum(name string) ([]EnumMember, bool) {
	members, ok := _this.enums[name]
	if !ok {
		return nil, false
	}
	return append([]EnumMember(nil), members...), true
}

func (_this *Registry) Constant(name string) (int64, bool) {
	v, ok := _this.constants[name]
	return v, ok
}

// IsParsed reports whether file has been processed in this session.
func (_this *Registry) IsParsed(file string) bool {
	return _this.files[file]
}

func (_this *Registry) StructNames() []string {
	return sortedKeys(_this.structs)
}

func (_this *Registry) UnionNames() []string {
	return sortedKeys(_this.unions)
}

func (_this *Registry) EnumNames() []string {
	return sortedKeys(_this.enums)
}

func (_this *Registry) ConstantNames() []string {
	return sortedKeys(_this.constants)
}

// Files returns every known header file, parsed or not.
func (_this *Registry) Files() []string {
	return sortedKeys(_this.files)
}

func (_this *Registry) storeStruct(name string, members []Field, size int) {
	_this.structs[name] = members
	_this.sizes[name] = size
}

func (_this *Registry) storeUnion(name string, members []Field, size int) {
	_this.unions[name] = members
	_this.sizes[name] = size
}

func (_this *Registry) storeEnum(name string, members []EnumMember) {
	_this.enums[name] = members
}

// storeScalar registers a typedef of a basic type or of a pointer.
func (_this *Registry) storeScalar(name string, size int) {
	_this.basicTypes.Add(name)
	_this.sizes[name] = size
}

// alias registers name as another name of the user type target.
func (_this *Registry) alias(name, target string) bool {
	if name == target {
		return true
	}
	switch _this.TokenType(target) {
	case StructName:
		_this.storeStruct(name, _this.structs[target], _this.sizes[target])
	case UnionName:
		_this.storeUnion(name, _this.unions[target], _this.sizes[target])
	case EnumName:
		_this.storeEnum(name, _this.enums[target])
	case BasicDataType:
		_this.storeScalar(name, _this.sizes[target])
	default:
		return false
	}
	return true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
