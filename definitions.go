package main

import (
	"io"
	"math"
	"time"

	"github.com/danswartzendruber/avl"
	"github.com/danswartzendruber/liner"
)

//
// Constants
//

const VERSION = "1.0.0"

const myPrompt = "% "

const myMaxFNum = 9007199254740992.0

const maxLineLen = math.MaxUint8

const maxVariableLen = 29

const minStmtNo = 1
const maxStmtNo = math.MaxInt16

const colorRedSeq = "\033[31m"
const colorResetSeq = "\033[0m"
const colorInverseVideoSeq = "\033[7m"

const listingHeader = "## BASIC Code ##"
const listingTrailer = "## END ##"

//
// Token values produced by the lexer.  EOL marks the end of the
// statement line.  The last two never come from the lexer: UNEG is
// emitted by the expression parser for unary minus, and NRPN marks
// a compiled (postfix) expression operand hung off a statement node
//

const (
	EOL = iota
	INTEGER
	FLOAT
	IDENT
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	POW
	EQ
	NE
	LT
	LE
	GT
	GE
	ASSIGN
	LPAR
	RPAR
	COMMA
	REM
	LET
	GOTO
	PRINT
	IF
	THEN
	GOSUB
	RETURN
	END
	UNEG
	NRPN
)

//
// Display names for tokens, used in diagnostics
//

var tokenNames = [...]string{
	EOL:     "end of line",
	INTEGER: "integer",
	FLOAT:   "floating point number",
	IDENT:   "identifier",
	PLUS:    "'+'",
	MINUS:   "'-'",
	STAR:    "'*'",
	SLASH:   "'/'",
	PERCENT: "'%'",
	POW:     "'^'",
	EQ:      "'=='",
	NE:      "'!='",
	LT:      "'<'",
	LE:      "'<='",
	GT:      "'>'",
	GE:      "'>='",
	ASSIGN:  "'='",
	LPAR:    "'('",
	RPAR:    "')'",
	COMMA:   "','",
	REM:     "REM",
	LET:     "LET",
	GOTO:    "GOTO",
	PRINT:   "PRINT",
	IF:      "IF",
	THEN:    "THEN",
	GOSUB:   "GOSUB",
	RETURN:  "RETURN",
	END:     "END",
	UNEG:    "unary '-'",
	NRPN:    "expression",
}

//
// Type definitions
//

type position struct {
	column int
}

type symLoc struct {
	pos position
	end position
}

type Lval struct {
	token      int
	stringVal  string
	int64Val   int64
	float64Val float64
	symLoc     symLoc
}

type Lexer struct {
	tokens []Lval
	line   string
	idx    int
}

//
// A variable reference inside a compiled expression
//

type varToken string

type tokenList []any

type rpnStack struct {
	entries []any
}

//
// procState carries everything the expression processor needs to
// know about what it is evaluating, so error reports can point at
// both the statement and the offending expression
//

type procState struct {
	stmt  *stmtNode
	node  *tokenNode
	expr  tokenList
	stack rpnStack
}

type tokenNode struct {
	operands  []*tokenNode
	tokenData any
	token     int
	tlocs     uint16
	tloce     uint16
}

type stmtNode struct {
	avl      avl.AvlNode
	token    int
	tokenLoc symLoc
	line     string
	operands []*tokenNode
	stmtNo   int16
}

type symtabNode struct {
	name  string
	value float64
}

//
// Error kinds.  Load-time kinds abort before execution begins,
// runtime kinds abort the run at the offending statement
//

type errorKind int

const (
	errLex errorKind = iota + 1
	errParse
	errDuplicateLine
	errMissingLineNumber
	errUnknownLine
	errDivideByZero
	errReturnWithoutGosub
	errEmptyProgram
	errInterrupted
	errRuntime
)

//
// A user-visible interpreter error.  stmtNo is the BASIC line the
// error occurred on (0 when none applies), line is the stored source
// text, and loc the column span to underline
//

type basicError struct {
	msg    string
	line   string
	loc    symLoc
	kind   errorKind
	stmtNo int16
}

//
// Internal interpreter bugs.  fatalError fills in the Go source
// location of its caller
//

type internalErrorInfo struct {
	msg  string
	file string
	line int
}

//
// This structure contains the non-persistent state of a program run
//

type run struct {
	curStmt    *stmtNode
	gosubStack []*stmtNode
}

var r run

//
// This structure contains persistent data
//

var g struct {
	program     *avl.AvlNode
	symtabMap   map[string]*symtabNode
	output      io.Writer
	inputLiner  *liner.State
	interrupted bool
	running     bool
	printStats  bool
	traceExec   bool
	traceVars   bool
	traceDump   bool
}

//
// Runtime statistics for the executing program
//

var s struct {
	elapsed       time.Time
	utime         int64
	stime         int64
	numStatements int64
}

//
// Maps error kinds to the names used in diagnostics
//

var errorKindMap map[errorKind]string
