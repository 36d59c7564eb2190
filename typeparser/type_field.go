package typeparser

import (
	"strconv"
	"strings"

	"ctypereader/utils"
)

// Field is one member of a struct/union, or a variable declaration.
//
//	char *argv[2];  =>  TypeName: char, Name: argv, ArrayLen: 2, IsPointer: true, Size: 8
type Field struct {
	TypeName  string `json:"type" yaml:"type"`
	Name      string `json:"name" yaml:"name"`
	ArrayLen  int    `json:"array_len,omitempty" yaml:"array_len,omitempty"` // 0 for non-array
	IsPointer bool   `json:"pointer,omitempty" yaml:"pointer,omitempty"`
	Size      int    `json:"size" yaml:"size"` // in bytes, all elements of an array included
}

// ElemSize returns the size of one array element, or Size for a scalar.
func (f Field) ElemSize() int {
	if f.ArrayLen > 0 {
		return f.Size / f.ArrayLen
	}
	return f.Size
}

// Elem returns the declaration of one element of an array field.
func (f Field) Elem() Field {
	e := f
	e.ArrayLen = 0
	e.Size = f.ElemSize()
	return e
}

func (f Field) IsPadding() bool {
	return f.Name == utils.PaddingFieldName
}

func (f Field) String() string {
	var sb strings.Builder
	sb.WriteString(f.TypeName)
	if f.IsPointer {
		sb.WriteString("*")
	}
	sb.WriteString(" ")
	sb.WriteString(f.Name)
	if f.ArrayLen > 0 {
		sb.WriteString("[" + strconv.Itoa(f.ArrayLen) + "]")
	}
	return sb.String()
}

func makePadField(size int) Field {
	return Field{
		TypeName: "char",
		Name:     utils.PaddingFieldName,
		Size:     size,
	}
}
