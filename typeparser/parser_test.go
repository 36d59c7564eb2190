package typeparser

import (
	"bytes"
	"path/filepath"
	"testing"

	"ctypereader/logging"
	"ctypereader/setting"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoggedParser(opts ...Option) (*Parser, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewParser(logging.NewConsoleLogger(buf, logging.DEBUG), opts...), buf
}

func parseText(t *testing.T, p *Parser, text string) error {
	t.Helper()
	src, errs := Preprocess(text)
	require.Empty(t, errs)
	return p.ParseSource(src)
}

func sizeOf(t *testing.T, r *Registry, name string) int {
	t.Helper()
	size, ok := r.SizeOf(name)
	require.True(t, ok, "%s is not registered", name)
	return size
}

func memberNames(members []Field) []string {
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Name)
	}
	return names
}

func TestParseEmployee(t *testing.T) {
	p, buf := newLoggedParser()
	require.NoError(t, p.ParseFile(filepath.Join("testdata", "employee.h")))
	r := p.Registry()

	assert.True(t, r.IsParsed(filepath.Join("testdata", "employee.h")))
	assert.True(t, r.IsParsed(filepath.Join("testdata", "common.h")))
	assert.Contains(t, buf.String(), "INFO: Skip header file included by <> - <stdio.h>")

	maxLen, _ := r.Constant("MAX_NAME_LENGTH")
	assert.EqualValues(t, 4, maxLen)
	version, _ := r.Constant("VERSION")
	assert.EqualValues(t, 3, version)

	home, ok := r.LookupEnum("Home")
	require.True(t, ok)
	assert.Equal(t, []EnumMember{{"Anhui", 1}, {"Beijing", 9}, {"Shanghai", 10}, {"Zhejiang", 33}}, home)
	assert.Equal(t, 4, sizeOf(t, r, "Home"))

	sizes := map[string]int{
		"Manager":   8,
		"Engineer":  8,
		"_Engineer": 8,
		"Person":    12,
		"Intern":    4,
		"Position":  8,
		"_Position": 4,
		"Employee":  24,
	}
	for name, size := range sizes {
		assert.Equal(t, size, sizeOf(t, r, name), name)
	}

	manager, _ := r.LookupStruct("Manager")
	assert.Equal(t, []string{"a", "_padding_field_", "level"}, memberNames(manager))

	person, _ := r.LookupStruct("Person")
	assert.Equal(t, []Field{
		{TypeName: "char", Name: "name", ArrayLen: 4, Size: 4},
		{TypeName: "int", Name: "age", Size: 4},
		{TypeName: "Home", Name: "home", Size: 4},
	}, person)

	position, ok := r.LookupUnion("Position")
	require.True(t, ok)
	assert.Equal(t, []Field{
		{TypeName: "Manager", Name: "manager", Size: 8},
		{TypeName: "Intern", Name: "intern", Size: 4},
	}, position)

	employee, _ := r.LookupStruct("Employee")
	assert.Equal(t, []string{"id", "person", "position"}, memberNames(employee))

	assert.Equal(t, []string{"Employee", "Engineer", "Intern", "Manager", "Person", "_Engineer"}, r.StructNames())
	assert.Equal(t, []string{"Position", "_Position"}, r.UnionNames())
}

func TestParseFileTwice(t *testing.T) {
	p, buf := newLoggedParser()
	file := filepath.Join("testdata", "employee.h")
	require.NoError(t, p.ParseFile(file))
	before := p.Registry().Snapshot()

	require.NoError(t, p.ParseFile(file))
	assert.Equal(t, before, p.Registry().Snapshot())
	assert.Contains(t, buf.String(), "INFO: File is already processed: "+file)
}

func TestParseFileMissing(t *testing.T) {
	p := NewParser(nil)
	err := p.ParseFile(filepath.Join("testdata", "missing.h"))
	assert.ErrorContains(t, err, "failed to open file")
	assert.Empty(t, p.Registry().Files())
}

func TestAnonymousNames(t *testing.T) {
	text := "struct { int a; } x;\nstruct { char c; } y;\n"
	for i := 0; i < 2; i++ {
		p := NewParser(logging.Discard)
		require.NoError(t, parseText(t, p, text))
		assert.Equal(t, []string{"_ANONYMOUS_1", "_ANONYMOUS_2"}, p.Registry().StructNames())
		assert.Equal(t, 4, sizeOf(t, p.Registry(), "_ANONYMOUS_2"))
	}
}

func TestUnnamedMember(t *testing.T) {
	p := NewParser(logging.Discard)
	require.NoError(t, parseText(t, p, "struct V { int tag; union { int i; float f; }; };"))

	members, ok := p.Registry().LookupStruct("V")
	require.True(t, ok)
	require.Len(t, members, 2)
	assert.Equal(t, Field{TypeName: "_ANONYMOUS_1", Size: 4}, members[1])
	assert.Equal(t, 8, sizeOf(t, p.Registry(), "V"))
}

func TestUnnamedEnumDeclaresNoMember(t *testing.T) {
	p := NewParser(logging.Discard)
	require.NoError(t, parseText(t, p, "struct S {\n enum { A, B };\n int x;\n};"))
	r := p.Registry()

	members, ok := r.LookupStruct("S")
	require.True(t, ok)
	assert.Equal(t, []Field{{TypeName: "int", Name: "x", Size: 4}}, members)
	assert.Equal(t, 4, sizeOf(t, r, "S"))

	labels, ok := r.LookupEnum("_ANONYMOUS_1")
	require.True(t, ok)
	assert.Equal(t, []EnumMember{{"A", 0}, {"B", 1}}, labels)
}

func TestNestedDefinitions(t *testing.T) {
	p := NewParser(logging.Discard)
	text := `
struct Outer {
    struct Inner { char c; short s; } inner;
    enum Color { RED, GREEN = 5, BLUE } color;
    struct { int x; } pos[2];
};`
	require.NoError(t, parseText(t, p, text))
	r := p.Registry()

	assert.Equal(t, 4, sizeOf(t, r, "Inner"))
	color, _ := r.LookupEnum("Color")
	assert.Equal(t, []EnumMember{{"RED", 0}, {"GREEN", 5}, {"BLUE", 6}}, color)

	outer, _ := r.LookupStruct("Outer")
	assert.Equal(t, []Field{
		{TypeName: "Inner", Name: "inner", Size: 4},
		{TypeName: "Color", Name: "color", Size: 4},
		{TypeName: "_ANONYMOUS_1", Name: "pos", ArrayLen: 2, Size: 8},
	}, outer)
	assert.Equal(t, 16, sizeOf(t, r, "Outer"))
}

func TestBadMemberSizeIsNotFatal(t *testing.T) {
	p, buf := newLoggedParser()
	require.NoError(t, parseText(t, p, "struct Bad { char s[5]; };\nstruct Good { int a; };"))

	assert.Equal(t, 0, sizeOf(t, p.Registry(), "Bad"))
	assert.Equal(t, 4, sizeOf(t, p.Registry(), "Good"))
	assert.Contains(t, buf.String(), "WARN: struct Bad: array member cannot be aligned")
}

func TestUnionSize(t *testing.T) {
	p := NewParser(logging.Discard)
	require.NoError(t, parseText(t, p, "union U { char c; char s[5]; };"))
	assert.Equal(t, 8, sizeOf(t, p.Registry(), "U"))
}

func TestBadMemberIsSkipped(t *testing.T) {
	p, buf := newLoggedParser()
	require.NoError(t, parseText(t, p, "struct A { int a; Unknown u; char c; int arr[N]; };"))

	members, _ := p.Registry().LookupStruct("A")
	assert.Equal(t, []string{"a", "c", "_padding_field_"}, memberNames(members))
	assert.Equal(t, 8, sizeOf(t, p.Registry(), "A"))
	assert.Contains(t, buf.String(), "ERROR: Unresolved struct member declaration syntax in A: unknown data type - Unknown")
}

func TestMultipleVariables(t *testing.T) {
	p := NewParser(logging.Discard)
	require.NoError(t, parseText(t, p, "struct M { int a, b; char c; };"))

	members, _ := p.Registry().LookupStruct("M")
	assert.Equal(t, []string{"a", "c", "_padding_field_"}, memberNames(members))
}

func TestEnumMissingComma(t *testing.T) {
	p, buf := newLoggedParser()
	require.NoError(t, parseText(t, p, "enum E {\nA\nB\n};"))

	members, _ := p.Registry().LookupEnum("E")
	assert.Equal(t, []EnumMember{{"A", 0}, {"B", 1}}, members)
	assert.Contains(t, buf.String(), "ERROR: bad enum member declaration: missing ',' before B")
}

func TestTypedefs(t *testing.T) {
	p := NewParser(logging.Discard)
	text := `
typedef unsigned int UINT;
typedef char NAME[8];
typedef struct Node *NodePtr;
struct Node;
typedef enum { OFF, ON } Switch;
typedef struct Pair { short a; short b; } *PairPtr;
struct T { UINT a; char b; NAME n; NodePtr next; Switch s; PairPtr p; };
`
	require.NoError(t, parseText(t, p, text))
	r := p.Registry()

	assert.Equal(t, BasicDataType, r.TokenType("UINT"))
	assert.Equal(t, 4, sizeOf(t, r, "UINT"))
	assert.Equal(t, 8, sizeOf(t, r, "NAME"))
	assert.Equal(t, 4, sizeOf(t, r, "NodePtr"))
	assert.Equal(t, EnumName, r.TokenType("Switch"))
	assert.Equal(t, StructName, r.TokenType("Pair"))
	assert.Equal(t, 4, sizeOf(t, r, "PairPtr"))
	assert.Equal(t, 28, sizeOf(t, r, "T"))

	_, ok := r.LookupStruct("Node")
	assert.False(t, ok)
}

func TestConstantsAndDefines(t *testing.T) {
	p := NewParser(logging.Discard)
	text := `
#define SIZE (8)
#define NAME "text"
#define EXPR 1 + 2
#pragma once
int COUNT = 0x3;
struct S { char a[SIZE]; int b[COUNT]; };
`
	require.NoError(t, parseText(t, p, text))
	r := p.Registry()

	assert.Equal(t, []string{"COUNT", "SIZE"}, r.ConstantNames())
	assert.Equal(t, 20, sizeOf(t, r, "S"))
}

func TestStructuralErrors(t *testing.T) {
	p := NewParser(logging.Discard)
	err := parseText(t, p, "struct A int a;\nstruct B { int b; };")
	assert.ErrorIs(t, err, ErrUnbalancedBlock)
	_, ok := p.Registry().SizeOf("B")
	assert.False(t, ok)

	p = NewParser(logging.Discard)
	err = parseText(t, p, "struct A {\nint a;\n")
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestParseFiles(t *testing.T) {
	headers, excludes, err := (&setting.Settings{
		HeaderPatterns:  []string{"*.h"},
		ExcludePatterns: []string{"*_test.h"},
	}).Matchers()
	require.NoError(t, err)

	dir := filepath.Join("testdata", "include")
	p, buf := newLoggedParser(WithIncludePaths(dir, dir), WithPatterns(headers, excludes))

	assert.Equal(t, []string{
		filepath.Join(dir, "point.h"),
		filepath.Join(dir, "sub", "shape.h"),
	}, p.FindHeaderFiles(dir))
	assert.Contains(t, buf.String(), "INFO: Ignoring file "+filepath.Join(dir, "README.txt"))
	assert.Contains(t, buf.String(), "INFO: Ignoring excluded file "+filepath.Join(dir, "sub", "shape_test.h"))

	p.ParseFiles()
	r := p.Registry()
	assert.Equal(t, 4, sizeOf(t, r, "Point"))
	assert.Equal(t, 12, sizeOf(t, r, "Shape"))
	assert.Len(t, r.Files(), 2)
}
