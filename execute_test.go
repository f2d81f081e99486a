package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//
// Load a program into a fresh store and run it, capturing output.
// The load itself must succeed; only the run may fail
//

func runTestProgram(t *testing.T, src string) (string, error) {

	t.Helper()

	initAvl()

	var buf bytes.Buffer
	g.output = &buf

	require.NoError(t, loadProgram(strings.NewReader(src)))

	err := runProgram()

	return buf.String(), err
}

func TestRunArithmetic(t *testing.T) {

	cases := []struct {
		expr string
		out  string
	}{
		{"2 + 3 * 4", "14"},
		{"1 * 2 + 3", "5"},
		{"10 - 2 - 3", "5"},
		{"14 / 4", "3.5"},
		{"(1 + 2) * 3", "9"},
		{"7 % 3", "1"},
		{"-7 % 3", "-1"},
		{"7 % -3", "1"},
		{"2 ^ 3 ^ 2", "512"},
		{"-2 ^ 2", "-4"},
		{"2 ^ -3", "0.125"},
		{"2.5 + 1", "3.5"},
		{"1 < 2", "1"},
		{"2 < 1", "0"},
		{"1 == 1", "1"},
		{"1 != 1", "0"},
		{"3 >= 3", "1"},
		{"3 > 3", "0"},
		{"2 <= 1", "0"},
		{"(1 < 2) + 5", "6"},
		{"(1 <= 2) * (3 != 4)", "1"},
	}

	for _, c := range cases {
		out, err := runTestProgram(t, "10 print "+c.expr+"\n")

		assert.NoError(t, err, c.expr)
		assert.Equal(t, c.out+"\n", out, c.expr)
	}
}

//
// Variables hold floats, default to zero, and never need declaring
//

func TestRunVariables(t *testing.T) {

	out, err := runTestProgram(t,
		"10 let x = 5\n"+
			"20 let y = x * 2 + 1\n"+
			"30 print x, y, z\n")

	assert.NoError(t, err)
	assert.Equal(t, "5 11 0\n", out)
}

func TestRunLoop(t *testing.T) {

	out, err := runTestProgram(t,
		"10 let x = x + 1\n"+
			"20 if x < 5 then 10\n"+
			"30 print x\n")

	assert.NoError(t, err)
	assert.Equal(t, "5\n", out)
}

func TestRunIf(t *testing.T) {

	// Condition false: fall through to the next sequential statement

	out, err := runTestProgram(t,
		"10 if 1 > 2 then 30\n"+
			"20 print 1\n"+
			"30 print 2\n")

	assert.NoError(t, err)
	assert.Equal(t, "1\n2\n", out)

	// Condition true: jump

	out, err = runTestProgram(t,
		"10 if 2 > 1 then 30\n"+
			"20 print 1\n"+
			"30 print 2\n")

	assert.NoError(t, err)
	assert.Equal(t, "2\n", out)

	// Any nonzero condition value counts as true

	out, err = runTestProgram(t,
		"10 if 2 + 2 then 30\n"+
			"20 print 1\n"+
			"30 print 2\n")

	assert.NoError(t, err)
	assert.Equal(t, "2\n", out)
}

//
// The jump target of a false IF is never evaluated, so a dangling
// target is not an error on the untaken path
//

func TestRunIfFalseSkipsTarget(t *testing.T) {

	out, err := runTestProgram(t,
		"10 if 0 then 99\n"+
			"20 print 7\n")

	assert.NoError(t, err)
	assert.Equal(t, "7\n", out)
}

func TestRunGoto(t *testing.T) {

	out, err := runTestProgram(t,
		"10 goto 30\n"+
			"20 print 1\n"+
			"30 print 2\n")

	assert.NoError(t, err)
	assert.Equal(t, "2\n", out)
}

//
// Jump targets are expressions, evaluated when the jump fires
//

func TestRunComputedGoto(t *testing.T) {

	out, err := runTestProgram(t,
		"10 let n = 3\n"+
			"20 goto n * 10 + 10\n"+
			"30 print 1\n"+
			"40 print 2\n")

	assert.NoError(t, err)
	assert.Equal(t, "2\n", out)
}

func TestRunGosubReturn(t *testing.T) {

	out, err := runTestProgram(t,
		"10 gosub 100\n"+
			"20 print 2\n"+
			"30 end\n"+
			"100 print 1\n"+
			"110 return\n")

	assert.NoError(t, err)
	assert.Equal(t, "1\n2\n", out)
}

func TestRunNestedGosub(t *testing.T) {

	out, err := runTestProgram(t,
		"10 gosub 100\n"+
			"20 print 3\n"+
			"30 end\n"+
			"100 gosub 200\n"+
			"110 print 2\n"+
			"120 return\n"+
			"200 print 1\n"+
			"210 return\n")

	assert.NoError(t, err)
	assert.Equal(t, "1\n2\n3\n", out)
}

//
// Each GOSUB pushes a return site, so a chain of returns unwinds
// one call per RETURN
//

func TestRunGosubRecursion(t *testing.T) {

	out, err := runTestProgram(t,
		"10 let n = 0\n"+
			"20 gosub 100\n"+
			"30 print n\n"+
			"40 end\n"+
			"100 let n = n + 1\n"+
			"110 if n >= 50 then 130\n"+
			"120 gosub 100\n"+
			"130 return\n")

	assert.NoError(t, err)
	assert.Equal(t, "50\n", out)
}

//
// A subroutine body at the end of the program halts normally when
// execution runs off the end; RETURN after the last GOSUB resumes
// and halts the same way
//

func TestRunGosubAtProgramEnd(t *testing.T) {

	out, err := runTestProgram(t,
		"10 gosub 20\n"+
			"20 print 5\n")

	assert.NoError(t, err)
	assert.Equal(t, "5\n", out)

	out, err = runTestProgram(t,
		"10 gosub 30\n"+
			"20 end\n"+
			"30 return\n")

	assert.NoError(t, err)
	assert.Equal(t, "", out)

	// RETURN resuming past the final line halts normally
	out, err = runTestProgram(t,
		"10 goto 30\n"+
			"20 print 7\n"+
			"25 return\n"+
			"30 gosub 20\n")

	assert.NoError(t, err)
	assert.Equal(t, "7\n", out)
}

func TestRunReturnWithoutGosub(t *testing.T) {

	out, err := runTestProgram(t, "10 return\n")

	assert.Equal(t, "", out)
	require.Error(t, err)
	assert.Equal(t, errReturnWithoutGosub, errorKindOf(err))
	assert.Equal(t, "line 10: ReturnWithoutGosub: RETURN without GOSUB",
		err.Error())
}

func TestRunUnknownLine(t *testing.T) {

	cases := []struct {
		src string
		msg string
	}{
		{"10 goto 99\n", "line 10: UnknownLine: GOTO to non-existent line 99"},
		{"10 gosub 99\n", "line 10: UnknownLine: GOSUB to non-existent line 99"},
		{"10 goto 2.5\n", "Invalid line number 2.5"},
		{"10 goto 0\n", "Invalid line number 0"},
		{"10 goto -5\n", "Invalid line number -5"},
		{"10 if 1 then 99\n", "line 10: UnknownLine: GOTO to non-existent line 99"},
		{"10 let n = 6\n20 goto n * 10\n",
			"line 20: UnknownLine: GOTO to non-existent line 60"},
	}

	for _, c := range cases {
		_, err := runTestProgram(t, c.src)

		require.Error(t, err, c.src)
		assert.Equal(t, errUnknownLine, errorKindOf(err), c.src)
		assert.Contains(t, err.Error(), c.msg, c.src)
	}
}

//
// Division by zero halts the run at the offending statement, naming
// the expression.  Statements after the fault never execute
//

func TestRunDivideByZero(t *testing.T) {

	out, err := runTestProgram(t,
		"10 print 1\n"+
			"20 print 10 / 0\n"+
			"30 print 2\n")

	assert.Equal(t, "1\n", out)
	require.Error(t, err)
	assert.Equal(t, errDivideByZero, errorKindOf(err))
	assert.Equal(t, "line 20: DivideByZero: Division by 0 in 10 / 0",
		err.Error())

	// The divisor can be a variable

	_, err = runTestProgram(t, "10 print 10 / x\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Division by 0 in 10 / x")

	// '%' faults the same way

	_, err = runTestProgram(t, "10 print 1 % 0\n")
	require.Error(t, err)
	assert.Equal(t, errDivideByZero, errorKindOf(err))
	assert.Contains(t, err.Error(), "Division by 0 in 1 % 0")
}

//
// Overflow to infinity is a floating point fault
//

func TestRunFloatingError(t *testing.T) {

	out, err := runTestProgram(t,
		"10 let x = 1e308\n"+
			"20 print x * 10\n")

	assert.Equal(t, "", out)
	require.Error(t, err)
	assert.Equal(t, errRuntime, errorKindOf(err))
	assert.Contains(t, err.Error(), "line 20: RuntimeError: Floating point error in x * 10")
}

func TestRunEnd(t *testing.T) {

	out, err := runTestProgram(t,
		"10 print 1\n"+
			"20 end\n"+
			"30 print 2\n")

	assert.NoError(t, err)
	assert.Equal(t, "1\n", out)
}

//
// Execution starts at the lowest line number and falls off the end
// without needing an END
//

func TestRunFallsOffEnd(t *testing.T) {

	out, err := runTestProgram(t, "20 print 2\n10 print 1\n")

	assert.NoError(t, err)
	assert.Equal(t, "1\n2\n", out)
}

func TestRunEmptyProgram(t *testing.T) {

	_, err := runTestProgram(t, "")

	require.Error(t, err)
	assert.Equal(t, errEmptyProgram, errorKindOf(err))
	assert.Equal(t, "EmptyProgram: No statements to execute", err.Error())

	// Blank lines alone do not make a program

	_, err = runTestProgram(t, "\n   \n\n")
	require.Error(t, err)
	assert.Equal(t, errEmptyProgram, errorKindOf(err))
}

func TestRunPrint(t *testing.T) {

	// A bare PRINT emits an empty line

	out, err := runTestProgram(t, "10 print\n")
	assert.NoError(t, err)
	assert.Equal(t, "\n", out)

	// Comma-separated expressions print space-separated

	out, err = runTestProgram(t, "10 print 1, 2 + 3, x\n")
	assert.NoError(t, err)
	assert.Equal(t, "1 5 0\n", out)
}

func TestRunRem(t *testing.T) {

	out, err := runTestProgram(t,
		"10 rem this program prints one number\n"+
			"20 print 1\n")

	assert.NoError(t, err)
	assert.Equal(t, "1\n", out)
}

func TestRunCountsStatements(t *testing.T) {

	_, err := runTestProgram(t,
		"10 let x = 1\n"+
			"20 let y = 2\n"+
			"30 print x + y\n")

	assert.NoError(t, err)
	assert.EqualValues(t, 3, s.numStatements)

	_, err = runTestProgram(t,
		"10 let x = x + 1\n"+
			"20 if x < 3 then 10\n"+
			"30 print x\n")

	assert.NoError(t, err)
	assert.EqualValues(t, 7, s.numStatements)
}

//
// Each run starts from pristine state: variables, the call stack and
// the statistics do not leak from the previous run
//

func TestRunResetsState(t *testing.T) {

	initAvl()
	require.NoError(t, loadProgram(strings.NewReader(
		"10 let x = x + 5\n20 print x\n")))

	var buf bytes.Buffer
	g.output = &buf

	require.NoError(t, runProgram())
	assert.Equal(t, "5\n", buf.String())

	buf.Reset()

	require.NoError(t, runProgram())
	assert.Equal(t, "5\n", buf.String())
}

//
// A posted interrupt stops execution between statements and is
// consumed by the stop
//

func TestCheckInterrupts(t *testing.T) {

	initializeRun()

	g.interrupted = true

	err := call(checkInterrupts)

	require.Error(t, err)
	assert.Equal(t, errInterrupted, errorKindOf(err))
	assert.Equal(t, "Interrupted", err.Error())
	assert.False(t, g.interrupted)

	// No interrupt posted: nothing happens

	assert.NoError(t, call(checkInterrupts))
}
