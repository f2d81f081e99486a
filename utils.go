package main

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/danswartzendruber/liner"
	"github.com/tklauser/go-sysconf"
	"golang.org/x/term"
)

func stdinIsTerminal() bool {

	return term.IsTerminal(0)
}

func stdoutIsTerminal() bool {

	return term.IsTerminal(1)
}

//
// The liner instance puts the terminal in raw mode, so it must be
// closed before we exit, lest the shell be left in a sorry state
//

func setupLiner() {

	g.inputLiner = liner.NewLiner()

	g.inputLiner.SetMultiLineMode(true)
}

func cleanupLiner() {

	if g.inputLiner != nil {
		g.inputLiner.Close()
		g.inputLiner = nil
	}
}

//
// Read a line from the terminal, with editing and history
//

func readLine(l *liner.State, prompt string, history bool) (string, bool) {

	s, err := l.Prompt(prompt)

	//
	// Annoyingly, a non-nil error here can be totally okay.  This
	// happens when the user enters ^D at the beginning of the line
	// (so EOF is seen).  ^C abandons the current line but not the
	// session
	//

	if err != nil {
		if err == io.EOF {
			return "", true
		} else if err == liner.ErrPromptAborted {
			return "", false
		}

		crash(fmt.Sprintf("readLine error: %q", err))
	}

	if history {
		l.AppendHistory(s)
	}

	return s, false
}

//
// Prettify the input string.  Eliminate leading and trailing
// whitespace, and replace multiple whitespace characters elsewhere
// with a single space character
//

func trimWhitespace(s string) string {

	src := []byte(s)
	var dst []byte
	var lastWasBlank bool

	for _, ch := range src {
		if unicode.IsSpace(rune(ch)) {
			if !lastWasBlank {
				lastWasBlank = true
				dst = append(dst, byte(' '))
			}
		} else {
			lastWasBlank = false
			dst = append(dst, ch)
		}
	}

	dst = bytes.TrimLeft(dst, " ")
	dst = bytes.TrimRight(dst, " ")

	return string(dst)
}

//
// All program output flows through here, so tests can capture it
// by swapping g.output
//

func basicPrint(msg string) {

	if _, err := fmt.Fprint(g.output, msg); err != nil {
		runtimeError(err.Error())
	}
}

func basicPrintLine(msg string) {

	basicPrint(msg + "\n")
}

//
// basicFormat renders a numeric value the way PRINT displays it:
// integral values print as integers, everything else in Go's
// shortest 'g' form
//

func basicFormat(x float64) string {

	if x == math.Trunc(x) && math.Abs(x) <= myMaxFNum {
		return strconv.FormatInt(int64(x), 10)
	}

	return strconv.FormatFloat(x, 'g', -1, 64)
}

//
// Oddity: 0 is considered plural
//

func pluralize(str string, num int64) string {

	if num != 1 {
		return str + "s"
	}

	return str
}

//
// Check to see if sigHdlr has posted an interrupt
//

func checkInterrupts() {

	if g.interrupted {
		g.interrupted = false
		runtimeErrorInternal(errInterrupted, EINTERRUPTED, symLoc{})
	}
}

func convertToMB(num uint64) uint64 {

	const MB = 1024 * 1024

	return (num + MB - 1) / MB
}

//
// Initialize the clock
//

func initClock() {

	s.elapsed = time.Now()
	s.utime, s.stime = getCPUInfo()
}

func printCpuUsage() {

	elapsed := time.Since(s.elapsed)
	utime, stime := getCPUInfo()

	fmt.Printf("CPU Usage: elapsed = %s / user = %s / system = %s\n",
		formatCPUTime(int64(elapsed.Seconds())),
		formatCPUTime(utime-s.utime), formatCPUTime(stime-s.stime))
}

func formatCPUTime(t int64) string {

	var h, m int64

	if t >= 3600 {
		h = t / 3600
		t = t % 3600
	}

	if t >= 60 {
		m = t / 60
		t = t % 60
	}

	return fmt.Sprintf("%02d:%02d:%02d", h, m, t)
}

//
// User and system CPU time come from /proc/self/stat, scaled by the
// clock tick rate
//

func getCPUInfo() (int64, int64) {

	clktck, err := sysconf.Sysconf(sysconf.SC_CLK_TCK)
	if err != nil {
		panic(err)
	}

	contents, err := os.ReadFile("/proc/self/stat")
	if err != nil {
		panic(err)
	}

	fields := strings.Fields(string(contents))

	utime, err := strconv.ParseInt(fields[13], 10, 64)
	if err != nil {
		panic(err)
	}

	stime, err := strconv.ParseInt(fields[14], 10, 64)
	if err != nil {
		panic(err)
	}

	return utime / clktck, stime / clktck
}

//
// This routine implements replacement of a substring.  The location
// parameters are uint16, since the maximum line length is 255, but
// the slice end is half-open, so we need to allow 256 as a value.
// NB: the replaced substring can be empty (e.g. sloc and eloc are
// equal), in which case we're inserting the replacement string at
// that location
//

func replaceSubstring(src string, sloc, eloc uint16, rep string) string {

	first := strings.Clone(src[0:sloc])
	last := strings.Clone(src[eloc:])

	return first + strings.Clone(rep) + last
}

//
// Return a copy of the input string modified per the escape string
//

func colorizeString(str string, tloc *symLoc, esc string) string {

	s := uint16(tloc.pos.column) - 1
	e := uint16(tloc.end.column)

	return replaceSubstring(str, s, e, esc+str[s:e]+colorResetSeq)
}

func crash(msg string) {

	cleanupLiner()

	if msg != "" {
		fmt.Println(msg)
	}

	os.Exit(1)
}
