package main

import (
	"fmt"
	"math"
)

//
// Run the loaded program from its lowest numbered statement.
// runProgram is the execution boundary: interpreter panics are
// decoded into ordinary error values here
//

func runProgram() error {

	return call(executeRun)
}

func executeRun() {

	//
	// Reinitialize any needed fields in the 'r' structure,
	// as well as nuking the symbol table
	//

	initializeRun()

	initSymbolTable()

	first := stmtAvlTreeFirstInOrder()
	if first == nil {
		runtimeErrorInternal(errEmptyProgram, EEMPTYPROGRAM, symLoc{})
	}

	resetStatistics()

	initClock()

	executeRunInternal(createExecutionState(first))

	printStatistics()
}

func initializeRun() {

	r = run{}
}

//
// The fetch-execute loop.  executeStmt() computes a new statement to
// execute: either explicitly, by verbs such as GOSUB, GOTO, RETURN
// and IF, or implicitly, by fetching the next sequential statement
// in the program.  A nil statement means we halted normally, either
// via END or by running off the end of the program
//

func executeRunInternal(state *procState) {

	curStmt := state.stmt

	r.curStmt = curStmt
	g.running = true
	g.interrupted = false

	for curStmt != nil {
		state = executeStmt(state)
		curStmt = state.stmt

		if curStmt != nil {
			r.curStmt = curStmt
		}

		s.numStatements++
	}

	g.running = false
}

func executeStmt(state *procState) *procState {

	checkInterrupts()

	return executeStmtInternal(state)
}

func executeStmtInternal(state *procState) *procState {

	curStmt := state.stmt

	if g.traceExec {
		traceStmt(curStmt)
	}

	switch curStmt.token {
	default:
		unexpectedTokenError(curStmt.token)

	case REM:
		// nothing to do

	case LET:
		executeLet(state)

	case PRINT:
		executePrint(curStmt.operands)

	case GOTO:
		return createExecutionState(executeGoto(curStmt.operands[0]))

	//
	// executeIf returns a non-nil stmt if the flow of control is
	// being altered, i.e. the condition held and the jump fired.
	// Otherwise we fall through to the next sequential statement
	//

	case IF:
		ret := executeIf(curStmt)
		if ret.stmt != nil {
			return ret
		}

	case GOSUB:
		return createExecutionState(executeGosub(curStmt.operands[0]))

	case RETURN:
		curStmt = executeReturn()

	case END:
		return createExecutionState(nil)
	}

	return createExecutionState(computeNextStmt(curStmt))
}

//
// Print the statement being executed, in inverse video when the
// output is a terminal
//

func traceStmt(stmt *stmtNode) {

	line := stmt.line

	if stdoutIsTerminal() {
		line = colorizeString(line, &stmt.tokenLoc, colorInverseVideoSeq)
	}

	fmt.Println(line)
}

//
// Expression evaluation.  The compiled postfix token list is walked
// left to right on a stack of float64 values.  Variable references
// are resolved when an operator pops them
//

func evaluateRpnExpr(tnode *tokenNode) float64 {

	var state procState

	if tnode.token != NRPN {
		unexpectedTokenError(tnode.token)
	}

	state.stmt = r.curStmt
	state.node = tnode
	state.expr = tnode.tokenData.(tokenList)

	return evaluateRpnExprInternal(&state)
}

func evaluateRpnExprInternal(state *procState) float64 {

	stackp := &state.stack

	//
	// Walk the token list, pushing, popping and operating as required
	//

	for _, item := range state.expr {
		switch item := item.(type) {
		default:
			unexpectedTypeError(item)

		case float64:
			rpnPush(stackp, item)

		case varToken:
			rpnPush(stackp, item)

		//
		// Operator tokens are GO 'int' values
		//

		case int:
			switch item {
			default:
				unexpectedTokenError(item)

			case PLUS:
				vl, vr := rpnPopTwoFloats(stackp)
				rpnPush(stackp, vl+vr)
				checkFloatingStatus(state)

			case MINUS:
				vl, vr := rpnPopTwoFloats(stackp)
				rpnPush(stackp, vl-vr)
				checkFloatingStatus(state)

			case STAR:
				vl, vr := rpnPopTwoFloats(stackp)
				rpnPush(stackp, vl*vr)
				checkFloatingStatus(state)

			case SLASH:
				vl, vr := rpnPopTwoFloats(stackp)
				if vr == 0 {
					arithFault(errDivideByZero, EDIVISIONBYZERO, state)
				}

				rpnPush(stackp, vl/vr)
				checkFloatingStatus(state)

			//
			// '%' is the floating point remainder, with the sign
			// of the dividend
			//

			case PERCENT:
				vl, vr := rpnPopTwoFloats(stackp)
				if vr == 0 {
					arithFault(errDivideByZero, EDIVISIONBYZERO, state)
				}

				rpnPush(stackp, math.Mod(vl, vr))
				checkFloatingStatus(state)

			case POW:
				vl, vr := rpnPopTwoFloats(stackp)
				rpnPush(stackp, math.Pow(vl, vr))
				checkFloatingStatus(state)

			case UNEG:
				rpnPush(stackp, -rpnPopFloat(stackp))

			case EQ:
				vl, vr := rpnPopTwoFloats(stackp)
				rpnPush(stackp, boolToFloat(vl == vr))

			case NE:
				vl, vr := rpnPopTwoFloats(stackp)
				rpnPush(stackp, boolToFloat(vl != vr))

			case LT:
				vl, vr := rpnPopTwoFloats(stackp)
				rpnPush(stackp, boolToFloat(vl < vr))

			case LE:
				vl, vr := rpnPopTwoFloats(stackp)
				rpnPush(stackp, boolToFloat(vl <= vr))

			case GT:
				vl, vr := rpnPopTwoFloats(stackp)
				rpnPush(stackp, boolToFloat(vl > vr))

			case GE:
				vl, vr := rpnPopTwoFloats(stackp)
				rpnPush(stackp, boolToFloat(vl >= vr))
			}
		}
	}

	ret := rpnPopFloat(stackp)

	basicAssert(len(stackp.entries) == 0, "RPN stack not empty")

	return ret
}

//
// This function is called after an arithmetic operator.  It pops the
// top of the RPN stack, checks for Inf or NaN, and if so throws a
// fault, else pushes the original number back on the stack
//

func checkFloatingStatus(state *procState) {

	val := rpnPopFloat(&state.stack)

	if math.IsNaN(val) || math.IsInf(val, 0) {
		arithFault(errRuntime, EFLOATINGERROR, state)
	}

	rpnPush(&state.stack, val)
}

//
// Arithmetic faults name the offending expression, re-rendered from
// the retained parse tree
//

func arithFault(kind errorKind, msg string, state *procState) {

	if state.node != nil {
		msg = msg + " in " + exprString(state.node)
	}

	runtimeErrorInternal(kind, msg, nodeLoc(state.node))
}

func evaluateBooleanExpr(tnode *tokenNode) bool {

	return evaluateRpnExpr(tnode) != 0
}

//
// Jump targets are full expressions.  The value must be an integer
// in the statement number range, and must name a stored line
//

func evaluateStmtNoExpr(tnode *tokenNode) int16 {

	val := evaluateRpnExpr(tnode)

	if val != math.Trunc(val) || val < minStmtNo || val > maxStmtNo {
		runtimeErrorInternal(errUnknownLine,
			fmt.Sprintf("Invalid line number %s", basicFormat(val)),
			nodeLoc(tnode))
	}

	return int16(val)
}

func boolToFloat(b bool) float64 {

	if b {
		return 1
	}

	return 0
}

//
// Statement executors
//

func executeLet(state *procState) {

	operands := state.stmt.operands

	sym := lookupSymbolRef(operands[0])

	storeFloatVar(sym, evaluateRpnExpr(operands[1]))
}

//
// Expressions print space-separated, on one line
//

func executePrint(args []*tokenNode) {

	var printBuf string

	for i, tp := range args {
		if tp.token != NRPN {
			unexpectedTokenError(tp.token)
		}

		if i > 0 {
			printBuf += " "
		}

		printBuf += basicFormat(evaluateRpnExpr(tp))
	}

	basicPrintLine(printBuf)
}

func executeIf(curStmt *stmtNode) *procState {

	ret := createExecutionState(nil)

	if evaluateBooleanExpr(curStmt.operands[0]) {
		ret = createExecutionState(executeGoto(curStmt.operands[1]))
	}

	return ret
}

func executeGoto(tnode *tokenNode) *stmtNode {

	stmtNo := evaluateStmtNoExpr(tnode)

	stmt := stmtAvlTreeLookup(stmtNo, cmpInt16Key)
	if stmt == nil {
		runtimeErrorInternal(errUnknownLine,
			fmt.Sprintf("GOTO to non-existent line %d", stmtNo),
			nodeLoc(tnode))
	}

	return stmt
}

//
// GOSUB pushes the GOSUB statement itself; RETURN resumes at the
// statement after it.  The program is immutable while running, so
// the successor is still there to find
//

func executeGosub(tnode *tokenNode) *stmtNode {

	stmtNo := evaluateStmtNoExpr(tnode)

	targetStmt := stmtAvlTreeLookup(stmtNo, cmpInt16Key)
	if targetStmt == nil {
		runtimeErrorInternal(errUnknownLine,
			fmt.Sprintf("GOSUB to non-existent line %d", stmtNo),
			nodeLoc(tnode))
	}

	r.gosubStack = append(r.gosubStack, r.curStmt)

	return targetStmt
}

func executeReturn() *stmtNode {

	if len(r.gosubStack) == 0 {
		runtimeErrorInternal(errReturnWithoutGosub, ERETURNNOGOSUB, symLoc{})
	}

	ret := r.gosubStack[len(r.gosubStack)-1]

	r.gosubStack = r.gosubStack[:len(r.gosubStack)-1]

	return ret
}

func computeNextStmt(curStmt *stmtNode) *stmtNode {

	return stmtAvlTreeNextInOrder(curStmt)
}
