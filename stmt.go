package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/danswartzendruber/avl"
)

//
// A set of wrapper routines to the AVL package.  We do this to hide
// the AVL interface from the interpreter code, as well as providing
// a single place to police duplicate statement numbers
//

func stmtAvlTreeFirstInOrder() *stmtNode {

	p := avl.AvlTreeFirstInOrder(g.program)
	if p != nil {
		return p.(*stmtNode)
	} else {
		return nil
	}
}

func stmtAvlTreeNextInOrder(stmt *stmtNode) *stmtNode {

	p := avl.AvlTreeNextInOrder(&stmt.avl)
	if p != nil {
		return p.(*stmtNode)
	} else {
		return nil
	}
}

func stmtAvlTreeLookup(key int16, cmp avl.CmpFuncKey) *stmtNode {

	p := avl.AvlTreeLookup(g.program, key, cmp)
	if p != nil {
		return p.(*stmtNode)
	} else {
		return nil
	}
}

//
// The AVL insert returns the payload already filed under the key
// when there is one.  Statement numbers must be unique, so that is
// a load-time error, not a replacement
//

func stmtAvlTreeInsert(stmt *stmtNode, cmp avl.CmpFuncNode) {

	p := avl.AvlTreeInsert(&g.program, &stmt.avl, stmt, cmp)
	if p != nil {
		panic(&basicError{kind: errDuplicateLine, msg: EDUPLICATELINE,
			line: stmt.line, stmtNo: stmt.stmtNo})
	}
}

//
// Load a program from a reader, one statement per line.  The first
// error stops the load
//

func loadProgram(input io.Reader) error {

	return call(func() {
		scanner := bufio.NewScanner(input)

		for scanner.Scan() {
			loadLine(scanner.Text())
		}

		if err := scanner.Err(); err != nil {
			runtimeError(fmt.Sprintf("Read error (%v)", err))
		}
	})
}

func loadLine(line string) {

	stmt := parseLine(line)
	if stmt == nil {
		return
	}

	stmtAvlTreeInsert(stmt, cmpInt16Snode)
}

//
// Interactive program entry.  Each line is diagnosed as it is
// typed; errors do not end the session, EOF (^D) does
//

func loadProgramLiner() {

	for {
		line, eof := readLine(g.inputLiner, myPrompt, true)
		if eof {
			fmt.Println()
			return
		}

		err := call(func() { loadLine(line) })
		if err != nil {
			printBasicError(err)
		}
	}
}
