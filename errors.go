package main

import "fmt"

//
// Manifest constants for the fixed interpreter error messages.
// Messages built from context (bad tokens, jump targets and so on)
// are formatted at the raise site instead
//

const (
	ELINETOOLONG       = "Line too long"
	EILLEGALNUMBER     = "Illegal number"
	EILLEGALLINENUMBER = "Illegal line number(s)"
	EMISSINGLINENUMBER = "Missing line number"
	EDUPLICATELINE     = "Multiple lines with same line number"
	EDIVISIONBYZERO    = "Division by 0"
	EFLOATINGERROR     = "Floating point error"
	ERETURNNOGOSUB     = "RETURN without GOSUB"
	EEMPTYPROGRAM      = "No statements to execute"
	EINTERRUPTED       = "Interrupted"
)

//
// Errors are raised by panicking with a *basicError and are decoded
// at the call() boundary, so loading and running return ordinary
// error values.  Diagnostics lead with the statement number when one
// applies:
//
//	line 40: DivideByZero: Division by 0 in 10 / x
//

func (e *basicError) Error() string {

	msg := errorKindName(e.kind)

	if e.msg != msg {
		msg = msg + ": " + e.msg
	}

	if e.stmtNo != 0 {
		return fmt.Sprintf("line %d: %s", e.stmtNo, msg)
	}

	return msg
}

func initErrors() {

	errorKindMap[errLex] = "LexError"
	errorKindMap[errParse] = "ParseError"
	errorKindMap[errDuplicateLine] = "DuplicateLine"
	errorKindMap[errMissingLineNumber] = "MissingLineNumber"
	errorKindMap[errUnknownLine] = "UnknownLine"
	errorKindMap[errDivideByZero] = "DivideByZero"
	errorKindMap[errReturnWithoutGosub] = "ReturnWithoutGosub"
	errorKindMap[errEmptyProgram] = "EmptyProgram"
	errorKindMap[errInterrupted] = "Interrupted"
	errorKindMap[errRuntime] = "RuntimeError"
}

//
// It should not be possible for the lookup on errorKindMap to fail
//

func errorKindName(kind errorKind) string {

	name, ok := errorKindMap[kind]
	basicAssert(ok, "No error kind name")

	return name
}

//
// We return 0 on a failed lookup or a non-interpreter error, as the
// callers rely on 0 meaning 'no interpreter error kind applies'
//

func errorKindOf(err error) errorKind {

	if be, ok := err.(*basicError); ok {
		return be.kind
	}

	return 0
}
