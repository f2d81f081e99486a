package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/danswartzendruber/avl"
	"github.com/goforj/godump"
)

//
// Tricky: init is called under the hood by the GO runtime when
// we fire up, so there are no visible calls to it!
//

func init() {

	initMaps()

	initErrors()

	initAvl()

	initSymbolTable()

	g.output = os.Stdout
}

func main() {

	list := flag.Bool("list", false, "list the stored program and exit")
	dump := flag.Bool("dump", false, "dump parsed statement nodes during load")
	stats := flag.Bool("stats", false, "print run statistics")
	trace := flag.Bool("trace", false, "trace statement execution")
	tracevars := flag.Bool("tracevars", false, "trace variable changes")

	flag.Usage = usage
	flag.Parse()

	g.traceDump = *dump
	g.printStats = *stats
	g.traceExec = *trace
	g.traceVars = *tracevars

	os.Exit(runMain(flag.Args(), *list))
}

func usage() {

	fmt.Println("usage: tinybasic [-list] [-dump] [-stats] [-trace]",
		"[-tracevars] [file]")
}

//
// Load the program from the file argument or stdin, then either
// list it or run it.  Exit status: 0 on success, 1 for load or
// runtime errors, 2 for argument problems
//

func runMain(args []string, list bool) int {

	go sigHdlr()

	switch len(args) {
	default:
		fmt.Println("Too many arguments")
		return 2

	case 1:
		f, ok := openProgramFile(args[0])
		if !ok {
			fmt.Println("Given argument is not a file")
			return 2
		}

		err := loadProgram(f)
		f.Close()

		if err != nil {
			printBasicError(err)
			return 1
		}

	case 0:
		if stdinIsTerminal() {
			printVersionInfo()
			setupLiner()
			loadProgramLiner()
			cleanupLiner()
		} else {
			if err := loadProgram(os.Stdin); err != nil {
				printBasicError(err)
				return 1
			}
		}
	}

	if list {
		listProgram()
		return 0
	}

	if err := runProgram(); err != nil {
		printBasicError(err)
		return 1
	}

	return 0
}

func openProgramFile(name string) (*os.File, bool) {

	fi, err := os.Stat(name)
	if err != nil || fi.IsDir() {
		return nil, false
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, false
	}

	return f, true
}

//
// Emit the stored program in statement number order
//

func listProgram() {

	basicPrintLine(listingHeader)

	for stmt := stmtAvlTreeFirstInOrder(); stmt != nil; {
		basicPrintLine(stmt.line)
		stmt = stmtAvlTreeNextInOrder(stmt)
	}

	basicPrintLine(listingTrailer)
}

func printVersionInfo() {

	fmt.Printf("tinybasic version %s\n", VERSION)
}

//
// Run the signal handling code in a goroutine.  While a program is
// running, ^C posts an interrupt that the engine picks up between
// statements.  Any other time it ends the process
//

func sigHdlr() {

	ch := make(chan os.Signal, 1)

	signal.Notify(ch, syscall.SIGINT)

	for range ch {
		if g.running {
			g.interrupted = true
		} else {
			crash(EINTERRUPTED)
		}
	}
}

//
// Wrapper routine for a function.  We need this so that panic calls
// can be caught and decoded before returning to our caller
//

func call(f func()) (err error) {

	defer func() {
		if e := recover(); e != nil {
			err = decodePanic(e)
		}
	}()

	f()

	return nil
}

//
// This procedure is called by the panic deferred recovery function.
// Interpreter errors become ordinary error values.  Internal errors
// report the Go source location that raised them.  Anything else is
// a Go runtime panic, which we do not swallow
//

func decodePanic(e any) error {

	switch e := e.(type) {
	default:
		panic(e)

	case *basicError:
		g.running = false
		return e

	case *internalErrorInfo:
		g.running = false
		debug.PrintStack()

		return fmt.Errorf("%q at %s line %d", e.msg,
			filepath.Base(e.file), e.line)
	}
}

//
// A handy 'assert' function
//

func basicAssert(chk bool, msg string) {

	if !chk {
		fatalError(msg)
	}
}

func runtimeError(msg string) {

	runtimeErrorInternal(errRuntime, msg, symLoc{})
}

//
// Errors raised while a statement is executing pick up the line
// number and source text of the current statement.  An explicit
// location narrows the report to the offending expression
//

func runtimeErrorInternal(kind errorKind, msg string, loc symLoc) {

	be := &basicError{kind: kind, msg: strings.TrimSuffix(msg, "\n")}

	if r.curStmt != nil {
		be.stmtNo = r.curStmt.stmtNo
		be.line = r.curStmt.line
		be.loc = r.curStmt.tokenLoc
	}

	if loc.pos.column != 0 {
		be.loc = loc
	}

	panic(be)
}

//
// Runtime errors raised by the interpreter itself.  Almost always
// due to a basicAssert failure.  We find filename and line number
// of our caller, and stuff those into the internalErrorInfo
// structure before calling panic
//

func fatalError(msg string) {

	_, file, line, ok := runtime.Caller(2)
	if !ok {
		crash("Unable to find caller frame!")
	}

	msg = strings.TrimRight(msg, "\n")

	panic(&internalErrorInfo{msg: msg, file: file, line: line})
}

func unexpectedTokenError(token int) {

	fatalError(fmt.Sprintf("Unexpected token %s", getTokenName(token)))
}

func unexpectedTypeError(item any) {

	fatalError(fmt.Sprintf("Unexpected type %T", item))
}

//
// Print a diagnostic: the source line (with the offending span in
// red when the output is a terminal) followed by the error text
//

func printBasicError(err error) {

	be, ok := err.(*basicError)
	if !ok {
		fmt.Println(err)
		return
	}

	if be.line != "" {
		line := be.line

		if be.loc.pos.column != 0 && stdoutIsTerminal() {

			//
			// A location just past the end of the line means the
			// complaint is about the line stopping too soon, so
			// give the marker a column to land on
			//

			if be.loc.pos.column > len(line) {
				line = line + " "
			}

			line = colorizeString(line, &be.loc, colorRedSeq)
		}

		fmt.Println(line)
	}

	fmt.Println(be.Error())
}

//
// Statement and expression node construction
//

func makeStmtNode(line string, token int, operands ...*tokenNode) *stmtNode {

	node := &stmtNode{token: token, line: line, operands: operands}

	if g.traceDump {
		godump.Dump(node)
	}

	return node
}

func makeTokenNode(token int, operands ...any) *tokenNode {

	node := &tokenNode{token: token}

	//
	// We can have 0 or more operands here.  If 0, there's nothing
	// to do.  If 1, it's the only token node or a primitive data
	// type.  Else all N tokens are token node pointers.  This
	// implies that if we didn't pass in a primitive type as the
	// single operand, the tokenData field in the node will be nil
	//

	switch len(operands) {
	case 0:
		// NOP

	case 1:
		switch op := operands[0].(type) {
		default:
			node.tokenData = op

		case *tokenNode:
			node.operands = append(node.operands, op)
		}

	default:
		for i := range operands {
			node.operands = append(node.operands, operands[i].(*tokenNode))
		}
	}

	return node
}

func makeLeafNode(t *Lval, token int, data any) *tokenNode {

	node := makeTokenNode(token, data)

	node.tlocs = uint16(t.symLoc.pos.column)
	node.tloce = uint16(t.symLoc.end.column)

	return node
}

func makeBinaryNode(token int, left, right *tokenNode) *tokenNode {

	node := makeTokenNode(token, left, right)

	node.tlocs = left.tlocs
	node.tloce = right.tloce

	return node
}

//
// This function takes an expression tree and returns an NRPN node
// holding the compiled postfix list.  The tree itself is retained
// as the node's operand, for re-rendering in diagnostics
//

func makeNrpnTokenNode(tnode *tokenNode) *tokenNode {

	node := makeTokenNode(NRPN, createRpnExprInternal(tnode))

	node.operands = append(node.operands, tnode)
	node.tlocs = tnode.tlocs
	node.tloce = tnode.tloce

	return node
}

//
// This routine accepts two tokenList parameters, appends the second
// to the first and returns the result.  If the first tokenList is
// nil, just return the second one
//

func appendTokenList(tla, tlb tokenList) tokenList {

	var ret tokenList

	if tla == nil {
		ret = tlb
	} else {
		ret = append(tla, tlb...)
	}

	return ret
}

//
// Postfix compilation: operands first, operator last.  Leaves
// become typed values; identifiers become varToken references,
// resolved at evaluation time
//

func createRpnExprInternal(tnode *tokenNode) tokenList {

	var tl tokenList

	for _, op := range tnode.operands {
		tl = appendTokenList(tl, createRpnExprInternal(op))
	}

	switch tnode.token {
	default:
		tl = append(tl, tnode.token)

	case IDENT:
		tl = append(tl, varToken(tnode.tokenData.(string)))

	case FLOAT:
		tl = append(tl, tnode.tokenData.(float64))

	case INTEGER:
		tl = append(tl, float64(tnode.tokenData.(int64)))

	case NRPN:
		unexpectedTokenError(tnode.token)
	}

	return tl
}

//
// RPN stack helpers
//

func rpnPush(stackp *rpnStack, value any) {

	stackp.entries = append(stackp.entries, value)
}

func rpnPop(stackp *rpnStack) any {

	slen := len(stackp.entries)
	if slen == 0 {
		fatalError("RPN stack underflow")
	}

	value := stackp.entries[slen-1]

	stackp.entries = stackp.entries[:slen-1]

	return value
}

//
// Pop a value off the RPN stack.  If it's a literal, just return
// it.  If it's a symbol, look up the current value and return that
//

func rpnPopValue(stackp *rpnStack) any {

	item := rpnPop(stackp)

	switch item := item.(type) {
	default:
		unexpectedTypeError(item)
		return nil

	case float64:
		return item

	case varToken:
		return lookupSymbolValue(item)
	}
}

func rpnPopFloat(stackp *rpnStack) float64 {

	val := rpnPopValue(stackp)

	f, ok := val.(float64)
	if !ok {
		unexpectedTypeError(val)
	}

	return f
}

func rpnPopTwoFloats(stackp *rpnStack) (float64, float64) {

	vr := rpnPopFloat(stackp)
	vl := rpnPopFloat(stackp)

	return vl, vr
}

//
// This function builds a dummy procState structure, whose only
// non-default field is a *stmtNode
//

func createExecutionState(stmt *stmtNode) *procState {

	return &procState{stmt: stmt}
}

func nodeLoc(tp *tokenNode) symLoc {

	if tp == nil {
		return symLoc{}
	}

	return symLoc{pos: position{column: int(tp.tlocs)},
		end: position{column: int(tp.tloce)}}
}

//
// AVL comparison functions.  Statements are keyed by statement
// number
//

func cmpInt16Key(key any, node any) int {

	return cmpInt16Items(key.(int16), node.(*stmtNode).stmtNo)
}

func cmpInt16Snode(node1, node2 any) int {

	return cmpInt16Items(node1.(*stmtNode).stmtNo, node2.(*stmtNode).stmtNo)
}

func cmpInt16Items(item1, item2 int16) int {

	if item1 < item2 {
		return -1
	} else if item1 > item2 {
		return 1
	} else {
		return 0
	}
}

func initAvl() {

	g.program = avl.NewAvlTree()
}

//
// Set up a map to map a string to a keyword token.  The low-level
// lexer will identify keywords as identifiers, so we correct the
// mis-lexing with a lookup here.  Make sure the keywords are lower
// case
//

func initMaps() {

	keywordMap = make(map[string]int)

	for tok := REM; tok <= END; tok++ {
		keywordMap[strings.ToLower(getTokenName(tok))] = tok
	}

	errorKindMap = make(map[errorKind]string)
}

func printStatistics() {

	var mem runtime.MemStats

	if g.printStats {
		fmt.Println()
		printCpuUsage()
		runtime.GC()
		runtime.ReadMemStats(&mem)
		fmt.Printf("%dMB memory used\n", convertToMB(mem.HeapAlloc))
		fmt.Printf("%d %s executed\n", s.numStatements,
			pluralize("statement", s.numStatements))
	}
}

func resetStatistics() {

	s.utime = 0
	s.stime = 0
	s.numStatements = 0
}
