package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//
// Lex a line the way loadLine does, converting the error panic into
// an error value
//

func lexTokens(line string) ([]Lval, error) {

	var toks []Lval

	err := call(func() { toks = newLexer(line).tokens })
	if err != nil {
		return nil, err
	}

	return toks, nil
}

func tokenKinds(toks []Lval) []int {

	kinds := make([]int, len(toks))

	for i, t := range toks {
		kinds[i] = t.token
	}

	return kinds
}

func TestLexerTokens(t *testing.T) {

	cases := []struct {
		line   string
		expect []int
	}{
		{
			"10 let x = 1",
			[]int{INTEGER, LET, IDENT, ASSIGN, INTEGER, EOL},
		},
		{
			"20 print a, 2.5",
			[]int{INTEGER, PRINT, IDENT, COMMA, FLOAT, EOL},
		},
		{
			"30 if x <= y then 40",
			[]int{INTEGER, IF, IDENT, LE, IDENT, THEN, INTEGER, EOL},
		},
		{
			"40 GoSub 100",
			[]int{INTEGER, GOSUB, INTEGER, EOL},
		},
		{
			"50 ReTuRn",
			[]int{INTEGER, RETURN, EOL},
		},
		{
			"60 let y = (a + b) * c / d % e ^ f",
			[]int{INTEGER, LET, IDENT, ASSIGN, LPAR, IDENT, PLUS, IDENT,
				RPAR, STAR, IDENT, SLASH, IDENT, PERCENT, IDENT, POW,
				IDENT, EOL},
		},
		{
			"70 if a == b then 80",
			[]int{INTEGER, IF, IDENT, EQ, IDENT, THEN, INTEGER, EOL},
		},
		{
			"80 if a != b then 90",
			[]int{INTEGER, IF, IDENT, NE, IDENT, THEN, INTEGER, EOL},
		},
		{
			"90 if a >= -b then 95",
			[]int{INTEGER, IF, IDENT, GE, MINUS, IDENT, THEN, INTEGER, EOL},
		},
		{
			"95 if a < b then 99",
			[]int{INTEGER, IF, IDENT, LT, IDENT, THEN, INTEGER, EOL},
		},
		{
			"99 if a > b then 10",
			[]int{INTEGER, IF, IDENT, GT, IDENT, THEN, INTEGER, EOL},
		},

		//
		// Everything after a REM verb is left unscanned, so characters
		// that would otherwise be lexical errors are fine there
		//

		{
			"100 rem & no ! scanning @ here",
			[]int{INTEGER, REM, EOL},
		},

		//
		// A line may run straight from the statement number into the
		// verb.  '100end' would otherwise lex as the start of a float
		// in exponential form
		//

		{
			"100end",
			[]int{INTEGER, END, EOL},
		},

		// Blank and all-whitespace lines lex to a lone EOL

		{
			"",
			[]int{EOL},
		},
		{
			"   \t  ",
			[]int{EOL},
		},
	}

	for _, c := range cases {
		toks, err := lexTokens(c.line)

		assert.NoError(t, err, c.line)
		assert.Equal(t, c.expect, tokenKinds(toks), c.line)
	}
}

func TestLexerValues(t *testing.T) {

	toks, err := lexTokens("10 let count9 = 42")
	require.NoError(t, err)

	assert.EqualValues(t, 10, toks[0].int64Val)
	assert.Equal(t, "count9", toks[2].stringVal)
	assert.EqualValues(t, 42, toks[4].int64Val)

	// Identifiers are folded to lower case

	toks, err = lexTokens("10 let CoUnT = 1")
	require.NoError(t, err)

	assert.Equal(t, "count", toks[2].stringVal)

	// A float literal

	toks, err = lexTokens("10 print 2.5e1")
	require.NoError(t, err)

	assert.Equal(t, FLOAT, toks[2].token)
	assert.Equal(t, 25.0, toks[2].float64Val)

	//
	// An integer literal too big for int64 is re-parsed as a float
	//

	toks, err = lexTokens("10 let x = 99999999999999999999")
	require.NoError(t, err)

	assert.Equal(t, FLOAT, toks[4].token)
	assert.Equal(t, 1e20, toks[4].float64Val)
}

//
// Token locations are 1-based column spans over the prettified line
//

func TestLexerTokenSpans(t *testing.T) {

	toks, err := lexTokens("10 let xyz = 5")
	require.NoError(t, err)

	cases := []struct {
		idx int
		pos int
		end int
	}{
		{0, 1, 2},   // 10
		{1, 4, 6},   // let
		{2, 8, 10},  // xyz
		{3, 12, 12}, // =
		{4, 14, 14}, // 5
	}

	for _, c := range cases {
		assert.Equal(t, c.pos, toks[c.idx].symLoc.pos.column)
		assert.Equal(t, c.end, toks[c.idx].symLoc.end.column)
	}

	// Two-character operators span both characters

	toks, err = lexTokens("10 if a >= b then 20")
	require.NoError(t, err)

	assert.Equal(t, GE, toks[3].token)
	assert.Equal(t, 9, toks[3].symLoc.pos.column)
	assert.Equal(t, 10, toks[3].symLoc.end.column)
}

//
// Input is prettified before scanning: runs of whitespace collapse
// to single spaces, and a verb jammed against the statement number
// is split
//

func TestLexerPrettifiesLine(t *testing.T) {

	lexer := newLexer("  10\tlet   x =    1 ")
	assert.Equal(t, "10 let x = 1", lexer.line)

	lexer = newLexer("100end")
	assert.Equal(t, "100 end", lexer.line)
}

func TestLexerErrors(t *testing.T) {

	cases := []struct {
		line string
		msg  string
	}{
		{"10 let x = 5 & 6", `Unexpected character '&' at column 14`},
		{"10 let x = !5", "Unexpected character '!' at column 12"},
		{"10 let " + strings.Repeat("z", 30) + " = 1", "Illegal variable name"},
		{"10 rem " + strings.Repeat("x", 300), ELINETOOLONG},
	}

	for _, c := range cases {
		_, err := lexTokens(c.line)

		assert.Equal(t, errLex, errorKindOf(err), c.line)
		assert.Contains(t, err.Error(), c.msg, c.line)
	}

	//
	// The error carries the column span of the offending text
	//

	_, err := lexTokens("10 let x = 5 & 6")
	require.Error(t, err)

	be := err.(*basicError)
	assert.Equal(t, 14, be.loc.pos.column)
	assert.Equal(t, 14, be.loc.end.column)

	// A 29-character name is still legal

	_, err = lexTokens("10 let " + strings.Repeat("z", 29) + " = 1")
	assert.NoError(t, err)
}
