// Package datareader renders a binary memory dump according to the types found by typeparser.
package datareader

import (
	"errors"
	"fmt"
	"strings"

	"ctypereader/logging"
	"ctypereader/typeparser"
	"ctypereader/utils"

	"github.com/dustin/go-humanize"
)

const tabWidth = 4

var ErrUnknownType = errors.New("unknown struct/union")

// TypeSource is the read-only view of the parsed types needed for decoding.
// *typeparser.Registry implements it.
type TypeSource interface {
	LookupStruct(name string) ([]typeparser.Field, bool)
	LookupUnion(name string) ([]typeparser.Field, bool)
	LookupEnum(name string) ([]typeparser.EnumMember, bool)
	SizeOf(name string) (int, bool)
}

var _ TypeSource = (*typeparser.Registry)(nil)

// Reader decodes one buffer. It is not safe for concurrent use.
type Reader struct {
	types TypeSource
	log   logging.Logger

	data  []byte
	owned bool
	// read offset into data
	cursor int

	bigEndian bool

	out strings.Builder
}

type Option func(*Reader)

// WithBigEndian makes scalars read most-significant byte first.
func WithBigEndian(bigEndian bool) Option {
	return func(r *Reader) {
		r.bigEndian = bigEndian
	}
}

func WithLogger(log logging.Logger) Option {
	return func(r *Reader) {
		if log != nil {
			r.log = log
		}
	}
}

// NewReader creates a reader over a buffer owned by the caller.
func NewReader(types TypeSource, data []byte, opts ...Option) *Reader {
	r := &Reader{
		types: types,
		log:   logging.Discard,
		data:  data,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewReaderFromFile creates a reader over the content of a dump file, see LoadDump.
func NewReaderFromFile(types TypeSource, path string, opts ...Option) (*Reader, error) {
	data, err := LoadDump(path)
	if err != nil {
		return nil, err
	}
	r := NewReader(types, data, opts...)
	r.owned = true
	r.log.Debug("Loaded %s (%s)", path, humanize.IBytes(uint64(len(data))))
	return r, nil
}

// Close releases a buffer loaded by the reader. A caller's buffer is left alone.
func (_this *Reader) Close() error {
	if _this.owned {
		_this.data = nil
		_this.owned = false
	}
	return nil
}

func (_this *Reader) Size() int {
	return len(_this.data)
}

// Render decodes the buffer from its first byte as the struct, or union, typeName.
func (_this *Reader) Render(typeName string, isUnion bool) (string, error) {
	_this.cursor = 0
	_this.out.Reset()

	members, isUnion, ok := _this.lookupComposite(typeName, isUnion)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownType, typeName)
	}

	if size, _ := _this.types.SizeOf(typeName); size != len(_this.data) {
		_this.log.Warn("The buffer size (%s) is not the same as size of the type %s (%s)",
			humanize.Bytes(uint64(len(_this.data))), typeName, humanize.Bytes(uint64(size)))
	}

	_this.prepareTypeData(typeName, members, 0, isUnion)
	return _this.out.String(), nil
}

func (_this *Reader) lookupComposite(name string, isUnion bool) ([]typeparser.Field, bool, bool) {
	if isUnion {
		if members, ok := _this.types.LookupUnion(name); ok {
			return members, true, true
		}
	}
	if members, ok := _this.types.LookupStruct(name); ok {
		return members, false, true
	}
	if members, ok := _this.types.LookupUnion(name); ok {
		_this.log.Debug("%s is a union", name)
		return members, true, true
	}
	return nil, false, false
}

// prepareTypeData writes a struct/union and its members. The opening line is not
// indented since it follows "name = " of the enclosing member.
func (_this *Reader) prepareTypeData(name string, members []typeparser.Field, indent int, isUnion bool) {
	kind := "struct"
	if isUnion {
		kind = "union"
	}
	// names made up for anonymous types are not shown
	if utils.IsAnonymous(name) {
		_this.out.WriteString(kind + " {\n")
	} else {
		_this.out.WriteString(kind + " " + name + " {\n")
	}

	_this.printMembers(members, indent+1, isUnion)

	_this.writeIndent(indent)
	_this.out.WriteString("}\n")
}

func (_this *Reader) printMembers(members []typeparser.Field, indent int, isUnion bool) {
	// all members of a union start at the same address
	start := _this.cursor

	for _, m := range members {
		if m.IsPadding() && !isUnion {
			// not printed, but the bytes are consumed
			_this.advance(m.Size)
			continue
		}
		if isUnion {
			_this.cursor = start
		}
		memberStart := _this.cursor

		switch {
		case m.ArrayLen > 0:
			_this.writeIndent(indent)
			_this.out.WriteString(m.Name + " = [\n")
			elem := m.Elem()
			for i := 0; i < m.ArrayLen; i++ {
				_this.cursor = memberStart + i*elem.Size
				_this.writeIndent(indent + 1)
				_this.out.WriteString(fmt.Sprintf("[%d] = ", i))
				_this.printVarData(elem, indent+1)
			}
			_this.writeIndent(indent)
			_this.out.WriteString("]\n")
		case m.Name == "":
			// unnamed struct/union member, its fields belong to the enclosing type
			_this.writeIndent(indent)
			_this.printVarData(m, indent)
		default:
			_this.writeIndent(indent)
			_this.out.WriteString(m.Name + " = ")
			_this.printVarData(m, indent)
		}

		// a nested union leaves the cursor at its start
		_this.cursor = memberStart + m.Size
	}

	if isUnion {
		_this.cursor = start
	}
}

func (_this *Reader) printVarData(f typeparser.Field, indent int) {
	if f.IsPointer {
		// pointers are never followed
		_this.printVarValue(f, nil, false)
		return
	}
	if members, ok := _this.types.LookupStruct(f.TypeName); ok {
		_this.prepareTypeData(f.TypeName, members, indent, false)
		return
	}
	if members, ok := _this.types.LookupUnion(f.TypeName); ok {
		_this.prepareTypeData(f.TypeName, members, indent, true)
		return
	}
	if labels, ok := _this.types.LookupEnum(f.TypeName); ok {
		_this.printVarValue(f, labels, true)
		return
	}
	if _, ok := _this.types.SizeOf(f.TypeName); ok {
		_this.printVarValue(f, nil, false)
		return
	}
	_this.log.Error("Unresolved data type - %s", f.TypeName)
	_this.out.WriteString("\n")
	_this.advance(f.Size)
}

// printVarValue writes one scalar as "<decimal>, <hex>" followed by the enum label,
// or by the character for a char.
func (_this *Reader) printVarValue(f typeparser.Field, labels []typeparser.EnumMember, isEnum bool) {
	isChar := f.TypeName == "char" && !f.IsPointer
	length := f.Size
	if isChar {
		length = 1
	}

	hex := utils.ToHex(_this.read(length), _this.bigEndian)
	_this.advance(length)

	value, err := utils.HexToInt(hex, length)
	if err != nil {
		_this.log.Debug("Cannot convert %s of %s into a number: %v", hex, f.Name, err)
		_this.out.WriteString(hex + "\n")
		return
	}
	_this.out.WriteString(fmt.Sprintf("%d, %s", value, hex))

	switch {
	case isEnum:
		label, ok := typeparser.LabelOf(labels, value)
		if !ok {
			label = "Unknown"
		}
		_this.out.WriteString(", " + label)
	case isChar && value != 0:
		_this.out.WriteString(", " + quoteChar(byte(value)))
	}
	_this.out.WriteString("\n")
}

// quoteChar quotes printable ASCII as is and any other byte as '\xNN'.
func quoteChar(b byte) string {
	if b >= 0x20 && b < 0x7f {
		return fmt.Sprintf("'%c'", b)
	}
	return fmt.Sprintf(`'\x%02x'`, b)
}

// read returns length bytes at the cursor; bytes beyond the end of the buffer read as zero.
func (_this *Reader) read(length int) []byte {
	buf := make([]byte, length)
	if _this.cursor < len(_this.data) {
		copy(buf, _this.data[_this.cursor:])
	}
	return buf
}

func (_this *Reader) advance(n int) {
	_this.cursor += n
	if _this.cursor > len(_this.data) {
		_this.log.Debug("bad data offset %d, the buffer has %d bytes", _this.cursor, len(_this.data))
	}
}

func (_this *Reader) writeIndent(depth int) {
	_this.out.WriteString(strings.Repeat(" ", tabWidth*depth))
}
