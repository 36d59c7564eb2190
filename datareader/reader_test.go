package datareader

import (
	"bytes"
	"testing"

	"ctypereader/logging"
	"ctypereader/typeparser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personHeader = `
enum Home { Anhui = 1, Beijing=9, Shanghai, Zhejiang = 33 };
struct Person {
    char name[4];
    int  age;
    enum Home home;
};
`

var personData = []byte{0x4E, 0x41, 0x4D, 0x00, 0x1E, 0x00, 0x00, 0x00, 0x09, 0x00, 0x00, 0x00}

func parseTypes(t *testing.T, text string) *typeparser.Registry {
	t.Helper()
	p := typeparser.NewParser(logging.Discard)
	src, errs := typeparser.Preprocess(text)
	require.Empty(t, errs)
	require.NoError(t, p.ParseSource(src))
	return p.Registry()
}

func TestRenderPerson(t *testing.T) {
	types := parseTypes(t, personHeader)
	size, _ := types.SizeOf("Person")
	require.Equal(t, 12, size)

	out, err := NewReader(types, personData).Render("Person", false)
	require.NoError(t, err)
	assert.Equal(t, `struct Person {
    name = [
        [0] = 78, 0x4e, 'N'
        [1] = 65, 0x41, 'A'
        [2] = 77, 0x4d, 'M'
        [3] = 0, 0x00
    ]
    age = 30, 0x0000001e
    home = 9, 0x00000009, Beijing
}
`, out)
}

func TestRenderEndianness(t *testing.T) {
	types := parseTypes(t, "struct S { short a; char b; int c; };")
	data := []byte{0x00, 0x01, 0x41, 0xFF, 0x00, 0x00, 0x01, 0x00}

	out, err := NewReader(types, data).Render("S", false)
	require.NoError(t, err)
	assert.Equal(t, `struct S {
    a = 256, 0x0100
    b = 65, 0x41, 'A'
    c = 65536, 0x00010000
}
`, out)

	out, err = NewReader(types, data, WithBigEndian(true)).Render("S", false)
	require.NoError(t, err)
	assert.Equal(t, `struct S {
    a = 1, 0x0001
    b = 65, 0x41, 'A'
    c = 256, 0x00000100
}
`, out)
}

func TestRenderNonPrintableChars(t *testing.T) {
	types := parseTypes(t, "struct C { char c[3]; };")

	out, err := NewReader(types, []byte{0x01, 0xFF, 0x41, 0x00}).Render("C", false)
	require.NoError(t, err)
	assert.Equal(t, `struct C {
    c = [
        [0] = 1, 0x01, '\x01'
        [1] = 255, 0xff, '\xff'
        [2] = 65, 0x41, 'A'
    ]
}
`, out)
}

func TestRenderAfterUnnamedEnum(t *testing.T) {
	types := parseTypes(t, "struct S {\n enum { A, B };\n int x;\n};")

	out, err := NewReader(types, []byte{5, 0, 0, 0}).Render("S", false)
	require.NoError(t, err)
	assert.Equal(t, `struct S {
    x = 5, 0x00000005
}
`, out)
}

// The enclosing struct skips the whole union, so tail is read after it
// rather than from the start of the union.
func TestRenderFieldAfterUnionMember(t *testing.T) {
	types := parseTypes(t, `
union Value { int i; char c; short s; };
struct Box { union Value v; int tail; };
`)
	data := []byte{0x41, 0x42, 0x00, 0x00, 0x07, 0x00, 0x00, 0x00}

	out, err := NewReader(types, data).Render("Box", false)
	require.NoError(t, err)
	assert.Equal(t, `struct Box {
    v = union Value {
        i = 16961, 0x00004241
        c = 65, 0x41, 'A'
        s = 16961, 0x4241
    }
    tail = 7, 0x00000007
}
`, out)
}

func TestRenderUnion(t *testing.T) {
	types := parseTypes(t, "union Value { int i; char c; };")
	data := []byte{0x41, 0x00, 0x00, 0x00}

	want := `union Value {
    i = 65, 0x00000041
    c = 65, 0x41, 'A'
}
`
	out, err := NewReader(types, data).Render("Value", true)
	require.NoError(t, err)
	assert.Equal(t, want, out)

	// a union is found even when not asked for
	out, err = NewReader(types, data).Render("Value", false)
	require.NoError(t, err)
	assert.Equal(t, want, out)
}

func TestRenderAnonymousTypes(t *testing.T) {
	types := parseTypes(t, `
struct Node {
    char *name;
    struct { short x; short y; } pos;
    union { int i; float f; };
};
`)
	data := []byte{0x10, 0x00, 0x00, 0x00, 0x02, 0x00, 0x03, 0x00, 0xFF, 0xFF, 0xFF, 0xFF}

	out, err := NewReader(types, data).Render("Node", false)
	require.NoError(t, err)
	assert.Equal(t, `struct Node {
    name = 16, 0x00000010
    pos = struct {
        x = 2, 0x0002
        y = 3, 0x0003
    }
    union {
        i = -1, 0xffffffff
        f = -1, 0xffffffff
    }
}
`, out)
	assert.NotContains(t, out, "_ANONYMOUS_")
}

func TestRenderStructArray(t *testing.T) {
	types := parseTypes(t, `
enum Level { LOW, HIGH };
struct Item { enum Level level; short id; };
struct List { struct Item items[2]; };
`)
	data := []byte{
		0x01, 0x00, 0x00, 0x00, 0x05, 0x00, 0xAA, 0xAA,
		0x07, 0x00, 0x00, 0x00, 0x06, 0x00, 0x00, 0x00,
	}

	out, err := NewReader(types, data).Render("List", false)
	require.NoError(t, err)
	assert.Equal(t, `struct List {
    items = [
        [0] = struct Item {
            level = 1, 0x00000001, HIGH
            id = 5, 0x0005
        }
        [1] = struct Item {
            level = 7, 0x00000007, Unknown
            id = 6, 0x0006
        }
    ]
}
`, out)
}

func TestRenderShortBuffer(t *testing.T) {
	types := parseTypes(t, personHeader)
	buf := &bytes.Buffer{}
	log := logging.NewConsoleLogger(buf, logging.DEBUG)

	out, err := NewReader(types, personData[:6], WithLogger(log)).Render("Person", false)
	require.NoError(t, err)
	assert.Contains(t, out, "    age = 30, 0x0000001e\n")
	assert.Contains(t, out, "    home = 0, 0x00000000, Unknown\n")
	assert.Contains(t, buf.String(), "WARN: The buffer size (6 B) is not the same as size of the type Person (12 B)")
	assert.Contains(t, buf.String(), "DEBUG: bad data offset")
}

func TestRenderUnknownType(t *testing.T) {
	types := parseTypes(t, personHeader)
	_, err := NewReader(types, personData).Render("Nobody", false)
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = NewReader(types, personData).Render("Home", false)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestRenderTwice(t *testing.T) {
	types := parseTypes(t, personHeader)
	r := NewReader(types, personData)
	first, err := r.Render("Person", false)
	require.NoError(t, err)
	second, err := r.Render("Person", false)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCloseBorrowedBuffer(t *testing.T) {
	types := parseTypes(t, personHeader)
	r := NewReader(types, personData)
	require.NoError(t, r.Close())
	assert.Equal(t, len(personData), r.Size())
}
