package utils

import (
	"fmt"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set"
)

const (
	// Alignment is the alignment modulus of every composite type.
	Alignment = 4
	// WordSize is the size of a pointer on the 32-bit target.
	WordSize = 4
	// IntSize is the size of int, and of every enum.
	IntSize = 4

	AnonymousTypePrefix = "_ANONYMOUS_"
	PaddingFieldName    = "_padding_field_"
)

// sizes of basic data types on a 32-bit system, in bytes
var basicTypeSizes = map[string]int{
	"void":               0,
	"char":               1,
	"bool":               1,
	"_Bool":              1,
	"__WCHAR_T_TYPE__":   1,
	"short":              2,
	"int":                4,
	"long":               4,
	"size_t":             4,
	"ssize_t":            4,
	"float":              4,
	"double":             8,
	"__int64":            8,
	"__SIZE_T_TYPE__":    4,
	"__PTRDIFF_T_TYPE__": 4,
	"int8_t":             1,
	"uint8_t":            1,
	"int16_t":            2,
	"uint16_t":           2,
	"int32_t":            4,
	"uint32_t":           4,
	"int64_t":            8,
	"uint64_t":           8,
	"short int":          2,
	"long int":           4,
	"long long":          8,
	"long long int":      8,
}

var qualifierList = []interface{}{
	"static", "const", "signed", "unsigned", "far", "extern",
	"volatile", "auto", "register", "inline", "__attribute__",
}

var qualifiers = mapset.NewSetFromSlice(qualifierList)

// BasicTypes returns the names of all built-in data types, multi-word names included.
func BasicTypes() mapset.Set {
	s := mapset.NewSet()
	for k := range basicTypeSizes {
		s.Add(k)
	}
	return s
}

// BasicTypeSize 返回基础类型的大小
func BasicTypeSize(name string) (int, bool) {
	size, ok := basicTypeSizes[name]
	return size, ok
}

// IsQualifier reports whether token is a qualifier the parser does not care about.
func IsQualifier(token string) bool {
	return qualifiers.Contains(token)
}

// IsIgnorable 过滤掉空token和修饰符
func IsIgnorable(token string) bool {
	return len(token) == 0 || IsQualifier(token)
}

// GetIntType 根据大小判断是c类型
func GetIntType(size int, isSigned bool) string {
	if isSigned {
		switch size {
		case 1:
			return "__int8"
		case 2:
			return "__int16"
		case 4:
			return "__int32"
		case 8:
			return "__int64"
		}
	} else {
		switch size {
		case 1:
			return "__uint8"
		case 2:
			return "__uint16"
		case 4:
			return "__uint32"
		case 8:
			return "__uint64"
		}
	}
	return "__int32"
}

// AlignUp rounds size up to a multiple of mod.
func AlignUp(size, mod int) int {
	if mod <= 0 || size%mod == 0 {
		return size
	}
	return (size/mod + 1) * mod
}

// AnonymousNamer hands out placeholder names for untagged struct/union/enum types.
// Names are unique within one namer and always come out in the same order.
type AnonymousNamer struct {
	next int
}

func (_this *AnonymousNamer) Next() string {
	_this.next++
	return fmt.Sprintf("%s%d", AnonymousTypePrefix, _this.next)
}

func IsAnonymous(name string) bool {
	return strings.HasPrefix(name, AnonymousTypePrefix)
}

// ToHex converts raw memory bytes to a "0x" prefixed hex string.
// Bytes are read least-significant first unless bigEndian is set.
func ToHex(data []byte, bigEndian bool) string {
	if len(data) == 0 {
		return "0x00"
	}
	var sb strings.Builder
	sb.Grow(2 + 2*len(data))
	sb.WriteString("0x")
	n := len(data)
	for i := 0; i < n; i++ {
		b := data[n-i-1]
		if bigEndian {
			b = data[i]
		}
		sb.WriteString(fmt.Sprintf("%02x", b))
	}
	return sb.String()
}

// HexToInt parses a string produced by ToHex back into a signed integer.
// Values up to 4 bytes wide are interpreted as a 32-bit int.
func HexToInt(hex string, width int) (int64, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(hex, "0x"), 16, 64)
	if err != nil {
		return 0, err
	}
	if width <= IntSize {
		return int64(int32(uint32(v))), nil
	}
	return int64(v), nil
}

// ParseNumber parses a C integer literal: decimal, hex or octal, with optional u/l suffixes.
func ParseNumber(token string) (int64, bool) {
	s := strings.TrimRight(token, "uUlL")
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		u, uerr := strconv.ParseUint(s, 0, 64)
		if uerr != nil {
			return 0, false
		}
		n = int64(u)
	}
	return n, true
}
