package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"
	"unicode"
)

var keywordMap map[string]int

//
// Lex one source line into a token slice.  The returned lexer holds
// the prettified line (the text stored on the statement node) and a
// token list that always ends with EOL.  Lexical problems panic with
// a *basicError and unwind to the call() boundary
//

func newLexer(line string) *Lexer {

	lexer := &Lexer{line: line}

	//
	// Ugly: the low-level scanner will get confused if it sees
	// something like '100end', as the '100e' will look like the
	// beginning of a floating point number in exponential format,
	// and the 'nd' will trigger an invalid floating point constant
	// error.  If we see a line starting with a digit, insert a single
	// space after the last digit in the sequence.  The subsequent call
	// to trimWhitespace will make sure the line is pretty-printed
	//

	if len(lexer.line) > 0 && unicode.IsDigit(rune(lexer.line[0])) {
		for i := 1; i < len(lexer.line); i++ {
			if !unicode.IsDigit(rune(lexer.line[i])) {
				lexer.line = replaceSubstring(lexer.line, uint16(i),
					uint16(i), " ")
				break
			}
		}
	}

	lexer.line = trimWhitespace(lexer.line)

	myScanner(lexer)

	return (lexer)
}

func saveToken(yylex *Lexer, tok Lval) {
	yylex.tokens = append(yylex.tokens, tok)
}

//
// This routine scans lexemes from the current input string until
// EOF, at which point it appends the terminating EOL token.  A REM
// token stops the scan, leaving the rest of the line opaque
//

func myScanner(yylex *Lexer) {
	var s scanner.Scanner
	var done bool

	if len(yylex.line) > maxLineLen {
		lexError(yylex.line, ELINETOOLONG, symLoc{})
	}

	sinput := strings.NewReader(yylex.line)

	s.Init(sinput)
	s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats
	s.IsIdentRune = basicIdent
	s.Error = dummyScannerError

	for !done {
		t, eof := getLexeme(yylex, &s)

		if eof {

			//
			// We want the EOL token location to point just past the
			// last real character on the input line.  We need this to
			// diagnose an unexpected end of input.  On EOL, it just so
			// happens that the end column is less than the starting
			// column, in which case getTokenLoc sets the end to the
			// start.
			//
			// Like this:
			// % 10 let x = 1 /
			// 10 let x = 1 /
			//               ^
			//

			t = Lval{token: EOL}
			t.symLoc = getTokenLoc(&s)

			saveToken(yylex, t)

			return
		}

		//
		// Everything after a REM verb is commentary, so terminate
		// the loop.  The parser rejects a REM anywhere other than
		// immediately after the line number
		//

		if t.token == REM {
			done = true
		}

		saveToken(yylex, t)
	}

	t := Lval{token: EOL}
	t.symLoc = getTokenLoc(&s)

	saveToken(yylex, t)
}

func getLexeme(yylex *Lexer, s *scanner.Scanner) (Lval, bool) {

	var t Lval

	tok := s.Scan()
	txt := s.TokenText()

	if tok == scanner.EOF {
		return Lval{}, true
	}

	switch tok {
	case scanner.Ident:

		//
		// Lower-case all letters
		//

		txt = strings.ToLower(txt)

		//
		// We *could* have basicIdent() check the passed-in position
		// against maxVariableLen, but the low-level scanner would then
		// stop at the 29th character and hand back the rest as a second
		// identifier, producing a useless 'consecutive identifiers'
		// complaint.  Our solution: allow the scanner to lex as long an
		// identifier as it can match, and reject it here if the lexeme
		// is longer than maxVariableLen
		//

		if len(txt) > maxVariableLen {
			lexError(yylex.line, "Illegal variable name", getTokenLoc(s))
		}

		//
		// Look the identifier up in the keyword lexeme map, and
		// return the keyword if found
		//

		keyword := keywordMap[txt]
		if keyword != 0 {
			t = Lval{token: keyword}
			break
		}

		t = Lval{token: IDENT}
		t.stringVal = txt

	case scanner.Int:

		//
		// If we scanned an integer, but it's out of range for a
		// 64-bit integer, re-parse it as a float
		//

		i, e := strconv.ParseInt(txt, 10, 64)
		if e != nil {
			if e.(*strconv.NumError).Err == strconv.ErrRange {
				f, e := strconv.ParseFloat(txt, 64)
				if e != nil {
					lexError(yylex.line, EILLEGALNUMBER, getTokenLoc(s))
				}
				t = Lval{token: FLOAT}
				t.float64Val = f
			} else {
				lexError(yylex.line, EILLEGALNUMBER, getTokenLoc(s))
			}
		} else {
			t = Lval{token: INTEGER}
			t.int64Val = i
		}

	case scanner.Float:
		f, e := strconv.ParseFloat(txt, 64)
		if e != nil {
			lexError(yylex.line, EILLEGALNUMBER, getTokenLoc(s))
		}

		t = Lval{token: FLOAT}
		t.float64Val = f

		//
		// '=' is assignment, '==' is the equality comparison
		//

	case '=':
		if s.Peek() == '=' {
			_ = s.Next()
			t = Lval{token: EQ}
		} else {
			t = Lval{token: ASSIGN}
		}

	case '<':
		if s.Peek() == '=' {
			_ = s.Next()
			t = Lval{token: LE}
		} else {
			t = Lval{token: LT}
		}

	case '>':
		if s.Peek() == '=' {
			_ = s.Next()
			t = Lval{token: GE}
		} else {
			t = Lval{token: GT}
		}

		//
		// '!' only exists as the first half of '!='
		//

	case '!':
		if s.Peek() == '=' {
			_ = s.Next()
			t = Lval{token: NE}
		} else {
			loc := getTokenLoc(s)
			lexError(yylex.line,
				fmt.Sprintf("Unexpected character '!' at column %d",
					loc.pos.column), loc)
		}

	case '+':
		t = Lval{token: PLUS}

	case '-':
		t = Lval{token: MINUS}

	case '*':
		t = Lval{token: STAR}

	case '/':
		t = Lval{token: SLASH}

	case '%':
		t = Lval{token: PERCENT}

	case '^':
		t = Lval{token: POW}

	case '(':
		t = Lval{token: LPAR}

	case ')':
		t = Lval{token: RPAR}

	case ',':
		t = Lval{token: COMMA}

	default:
		loc := getTokenLoc(s)
		lexError(yylex.line,
			fmt.Sprintf("Unexpected character %q at column %d",
				tok, loc.pos.column), loc)
	}

	//
	// Generate the token location information
	//

	t.symLoc = getTokenLoc(s)

	return t, false
}

//
// This is a dummy to suppress reporting of errors by the scanner
//

func dummyScannerError(s *scanner.Scanner, msg string) {
}

//
// Ident predicate routine for text/scanner.  Variable names are a
// letter followed by letters or digits
//

func basicIdent(ch rune, pos int) bool {

	if pos == 0 {
		return unicode.IsLetter(ch)
	}

	return unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

func getTokenName(token int) string {

	basicAssert(token >= EOL && token <= NRPN, "invalid token")

	return tokenNames[token]
}

//
// Lexical errors carry the source line and the column span of the
// offending text
//

func lexError(line string, msg string, loc symLoc) {

	panic(&basicError{kind: errLex, msg: msg, line: line, loc: loc})
}

//
// This function takes the current scanner object, and gins up
// a symLoc object, returning that to the caller.  Because
// BASIC is line-oriented, we ignore the line fields
//
// NB: if the scanner ran out of data in the input string,
// the end column will be less than the start column
//

func getTokenLoc(s *scanner.Scanner) symLoc {

	var symLoc symLoc

	symLoc.pos.column = s.Position.Column
	symLoc.end.column = s.Pos().Column - 1

	if symLoc.end.column < symLoc.pos.column {
		symLoc.end.column = symLoc.pos.column
	}

	return symLoc
}
