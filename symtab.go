package main

import "fmt"

//
// The symbol table maps variable names to values.  All values are
// floats.  Reading a name that was never assigned creates it with
// value 0, so variables never need declaring
//

//
// Initialize the symbol table to pristine state
//

func initSymbolTable() {

	g.symtabMap = make(map[string]*symtabNode)
}

//
// This function takes an arbitrary object holding a variable
// reference and returns the variable name.  The expression processor
// passes varToken objects; the LHS code in executeLet() passes the
// identifier tokenNode
//

func getVarName(token any) string {

	switch token := token.(type) {
	default:
		unexpectedTypeError(token)
		return ""

	case varToken:
		return string(token)

	case *tokenNode:
		return token.tokenData.(string)
	}
}

//
// This function takes a variable reference and returns its current
// value
//

func lookupSymbolValue(token any) float64 {

	return fetchFloatVar(lookupSymbolRef(token))
}

func lookupSymbolRef(token any) *symtabNode {

	sym := lookupSymbol(token)
	if sym == nil {
		sym = createSymbol(token)
	}

	return sym
}

func lookupSymbol(token any) *symtabNode {

	return g.symtabMap[getVarName(token)]
}

func createSymbol(token any) *symtabNode {

	name := getVarName(token)

	basicAssert(g.symtabMap[name] == nil, "Symbol already defined")

	sym := &symtabNode{name: name}

	g.symtabMap[name] = sym

	return sym
}

//
// helper functions to fetch and store variables
//

func fetchFloatVar(sym *symtabNode) float64 {

	return sym.value
}

func storeFloatVar(sym *symtabNode, val float64) {

	traceVar(sym.name, sym.value, val)

	sym.value = val
}

func traceVar(name string, oval, nval float64) {

	if g.traceVars {
		fmt.Printf("Variable %s changed from %g to %g\n", name, oval, nval)
	}
}
