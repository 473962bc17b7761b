package doc_analyzer

import (
	"testing"

	"github.com/meysamhadeli/odindoc/doc_analyzer/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_Example(t *testing.T) {
	src := "/** Adds two numbers.\n@param a first\n@param b second\n@return sum */\nadd :: proc(a, b: int) -> int"

	records := Extract(src)

	require.Len(t, records, 1)
	assert.Equal(t, models.DocRecord{
		Name:        "add",
		Description: "Adds two numbers.",
		Params: []models.Param{
			{Name: "a", Description: "first"},
			{Name: "b", Description: "second"},
		},
		Return:    "sum",
		Signature: "(a, b: int) -> int",
	}, records[0])
}

func TestExtract_StarDecoratedComment(t *testing.T) {
	src := `package math

/**
 * Clamps a value.
 *
 * @param x    the value
 * @param lo   lower bound
 * @param hi   upper bound
 * @return the clamped value
 */
clamp :: proc(x, lo, hi: f32) -> f32 {
	return min(max(x, lo), hi)
}
`
	records := Extract(src)

	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, "clamp", r.Name)
	assert.Equal(t, "Clamps a value.", r.Description)
	assert.Equal(t, []models.Param{
		{Name: "x", Description: "the value"},
		{Name: "lo", Description: "lower bound"},
		{Name: "hi", Description: "upper bound"},
	}, r.Params)
	assert.Equal(t, "the clamped value", r.Return)
	assert.Equal(t, "(x, lo, hi: f32) -> f32", r.Signature)
}

func TestExtract_SignatureIsVerbatim(t *testing.T) {
	cases := []struct {
		name string
		src  string
		sig  string
	}{
		{"no return", "/* d */ f :: proc(a:int,  b : string)\n{}", "(a:int,  b : string)"},
		{"empty params", "/* d */ f :: proc() {}", "()"},
		{"multiple results", "/* d */ f :: proc(s: string) -> (n: int, ok: bool) {}", "(s: string) -> (n: int, ok: bool)"},
		{"pointer result", "/* d */ f :: proc(x: ^T) -> ^T {}", "(x: ^T) -> ^T"},
		{"generic result", "/* d */ f :: proc(x: int) -> Maybe(int) {}", "(x: int) -> Maybe(int)"},
		{"slice result", "/* d */ f :: proc() -> []u8{}", "() -> []u8"},
		{"nested parens", "/* d */ f :: proc(cb: proc(x: int) -> int, n := (1 + 2)) {}", "(cb: proc(x: int) -> int, n := (1 + 2))"},
		{"paren inside string default", "/* d */ f :: proc(sep := \")\") {}", "(sep := \")\")"},
		{"multi-line params", "/* d */\nf :: proc(\n\ta: int,\n\tb: int,\n) -> int {}", "(\n\ta: int,\n\tb: int,\n) -> int"},
		{"calling convention", "/* d */ f :: proc \"contextless\" (x: int) {}", "(x: int)"},
		{"directive", "/* d */ f :: #force_inline proc(x: int) -> int {}", "(x: int) -> int"},
		{"foreign declaration", "/* d */ f :: proc(x: i32) -> i32 ---", "(x: i32) -> i32"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			records := Extract(c.src)
			require.Len(t, records, 1)
			assert.Equal(t, "f", records[0].Name)
			assert.Equal(t, c.sig, records[0].Signature)
		})
	}
}

func TestExtract_MultipleInOrder(t *testing.T) {
	src := `
/** First. */
first :: proc() {}

some_var := 12

/** Second. */
second :: proc(x: int) {}

/** Third. */
third :: proc(y: int) -> bool { return true }
`
	records := Extract(src)

	require.Len(t, records, 3)
	assert.Equal(t, "first", records[0].Name)
	assert.Equal(t, "second", records[1].Name)
	assert.Equal(t, "third", records[2].Name)
	assert.Equal(t, "Third.", records[2].Description)
}

func TestExtract_SkipsNonMatchingCandidates(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"no comments", "add :: proc(a, b: int) -> int { return a + b }"},
		{"comment before a constant", "/** Pi. */\nPI :: 3.14159"},
		{"comment before a struct", "/** A point. */\nPoint :: struct { x, y: f32 }"},
		{"code between comment and proc", "/** doc */\nx := 1\nf :: proc() {}"},
		{"keyword prefix only", "/** doc */\nf :: procedure(x: int)"},
		{"unterminated comment", "/** doc \nf :: proc() {}"},
		{"unbalanced params", "/** doc */\nf :: proc(a: int"},
		{"line comment", "// doc\nf :: proc() {}"},
		{"empty input", ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Empty(t, Extract(c.src))
		})
	}
}

func TestExtract_UnclosedOpenerSkipsOnlyItself(t *testing.T) {
	cases := []struct {
		name  string
		src   string
		names []string
	}{
		{
			"stray opener before documented procs",
			"/* stray opener, never closed\n\n/** Adds. */\nadd :: proc(a, b: int) -> int { return a + b }\n\n/** Subs. */\nsub :: proc(a, b: int) -> int { return a - b }\n",
			[]string{"add", "sub"},
		},
		{
			"unclosed outer around a closed inner",
			"/** outer /** Inner. */\ninner :: proc() {}\n",
			[]string{"inner"},
		},
		{
			"unclosed opener after a record",
			"/** First. */\nfirst :: proc() {}\n/* trailing",
			[]string{"first"},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var names []string
			for _, record := range Extract(c.src) {
				names = append(names, record.Name)
			}
			assert.Equal(t, c.names, names)
		})
	}

	records := Extract(cases[0].src)
	require.Len(t, records, 2)
	assert.Equal(t, "Adds.", records[0].Description)
	assert.Equal(t, "(a, b: int) -> int", records[0].Signature)
	assert.Equal(t, "Subs.", records[1].Description)
}

func TestExtract_CommentEndsAtFirstClose(t *testing.T) {
	// The first comment must not be stretched over the assignment up to the
	// second comment's close.
	src := "/** unrelated */ x := 1\n/** real */\nf :: proc() {}"

	records := Extract(src)

	require.Len(t, records, 1)
	assert.Equal(t, "real", records[0].Description)
}

func TestExtract_NestedComments(t *testing.T) {
	src := "/** outer /* inner */ still outer */\nf :: proc() {}"

	records := Extract(src)

	require.Len(t, records, 1)
	assert.Equal(t, "outer /* inner */ still outer", records[0].Description)
}

func TestExtract_IgnoresOpenersInLiterals(t *testing.T) {
	src := "s := \"/* not a comment\"\nr := '/'\nraw := `/*`\n// also /* not\n/** doc */\nf :: proc() {}"

	records := Extract(src)

	require.Len(t, records, 1)
	assert.Equal(t, "doc", records[0].Description)
}

func TestExtract_PlainBlockComment(t *testing.T) {
	records := Extract("/* Plain block comment. */\nf :: proc() {}")

	require.Len(t, records, 1)
	assert.Equal(t, "Plain block comment.", records[0].Description)
}

func TestStripComment(t *testing.T) {
	assert.Equal(t, "Line one.\n\nLine two.", stripComment("*\n * Line one.\n *\n * Line two.\n "))
}
