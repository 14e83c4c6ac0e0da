package simkernel

// CheckSyntax validates the arity and shape of a single node. Children are
// not visited; the parser checks every node as it builds it.
func (n *Expr) CheckSyntax() error {
	if code := n.syntaxCode(); code != NoSyntaxError {
		return &SyntaxError{Code: code, Expr: n.String()}
	}
	return nil
}

// CheckTree validates n and all of its descendants
func (n *Expr) CheckTree() error {
	for _, a := range n.args {
		if err := a.CheckTree(); err != nil {
			return err
		}
	}
	return n.CheckSyntax()
}

func (n *Expr) syntaxCode() SyntaxCode {
	info := &kindTable[n.kind]
	if len(n.args) < info.minArgs || (info.maxArgs != variadic && len(n.args) > info.maxArgs) {
		return IllegalArgumentNumber
	}
	if info.check != nil {
		return info.check(n)
	}
	return NoSyntaxError
}

func checkPattern(n *Expr) SyntaxCode {
	if !n.args[0].SymbolQ() {
		return PatternExpectSymbol
	}
	return NoSyntaxError
}

// checkAssign covers Set and Define, whose left side is a symbol or f[...]
func checkAssign(n *Expr, expectSymbol, expectFunctionOrSymbol SyntaxCode) SyntaxCode {
	lhs := n.args[0]
	switch lhs.kind {
	case KindSymbol:
		return NoSyntaxError
	case KindEvaluateAt:
		if !lhs.args[0].SymbolQ() {
			return expectSymbol
		}
		return NoSyntaxError
	}
	return expectFunctionOrSymbol
}

func checkSet(n *Expr) SyntaxCode {
	return checkAssign(n, SetExpectSymbol, SetExpectFunctionOrSymbol)
}

func checkDefine(n *Expr) SyntaxCode {
	return checkAssign(n, DefineExpectSymbol, DefineExpectFunctionOrSymbol)
}

// iterationListQ accepts {var, start, end} and {var, start, end, delta}
func iterationListQ(e *Expr) bool {
	return e.ListQ() && (len(e.args) == 3 || len(e.args) == 4)
}

func checkTable(n *Expr) SyntaxCode {
	it := n.args[1]
	if !iterationListQ(it) {
		return TableExpectList
	}
	if !it.args[0].SymbolQ() {
		return TableExpectSymbol
	}
	return NoSyntaxError
}

func symbolListQ(e *Expr) bool {
	if !e.ListQ() {
		return false
	}
	for _, a := range e.args {
		if !a.SymbolQ() {
			return false
		}
	}
	return true
}

func checkFunction(n *Expr) SyntaxCode {
	if !symbolListQ(n.args[0]) {
		return FunctionExpectSymbolList
	}
	return NoSyntaxError
}

func checkModule(n *Expr) SyntaxCode {
	if !symbolListQ(n.args[0]) {
		return ModuleExpectSymbolList
	}
	if n.args[1].kind != KindBlock {
		return ModuleExpectBlock
	}
	return NoSyntaxError
}

func checkSweep(n *Expr, expectList, expectSymbol, general SyntaxCode) SyntaxCode {
	switch len(n.args) {
	case 1:
		return NoSyntaxError
	case 2:
		it := n.args[1]
		if !iterationListQ(it) {
			return expectList
		}
		if !it.args[0].SymbolQ() {
			return expectSymbol
		}
		return NoSyntaxError
	}
	return general
}

func checkIterator(n *Expr) SyntaxCode {
	return checkSweep(n, IteratorExpectIterationList, IteratorExpectSymbol, IteratorSyntaxError)
}

func checkCreator(n *Expr) SyntaxCode {
	return checkSweep(n, CreatorExpectIterationList, CreatorExpectSymbol, CreatorSyntaxError)
}
