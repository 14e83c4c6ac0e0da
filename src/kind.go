package simkernel

import "fmt"

// Kind selects the node type of an expression
type Kind uint8

const (
	KindNull Kind = iota
	KindNoPattern
	KindNoMatch
	KindInteger
	KindReal
	KindString
	KindBool
	KindSymbol
	KindPi
	KindE
	KindGoldenRatio
	KindAll
	KindAutomatic
	KindNone

	KindPattern
	KindSequence
	KindList
	KindTable
	KindExtract
	KindAppend
	KindPrepend
	KindReplace
	KindInsert
	KindJoin
	KindLength
	KindFunction
	KindEvaluateAt
	KindSet
	KindDefine
	KindBlock
	KindGlobal
	KindReturn
	KindBreak
	KindModule
	KindIf
	KindFor

	KindPlus
	KindSubtract
	KindMultiply
	KindDivide
	KindMod
	KindPower
	KindMinus
	KindSin
	KindCos
	KindTan
	KindSinh
	KindCosh
	KindExp
	KindLog
	KindNot
	KindAnd
	KindOr
	KindGreater
	KindLess
	KindEqual
	KindNotEqual
	KindGreaterEqual
	KindLessEqual

	KindPrint
	KindIterator
	KindCreator
	KindImport
	KindRandom
	KindRandomInteger
	KindSeed
	KindToString
	KindRange
	KindHammingDistance

	kindCount
)

const variadic = -1

type evalFunc func(n *Expr, s *Scope) (Result, error)

// kindInfo is one row of the dispatch table
type kindInfo struct {
	name    string
	op      string // infix or prefix operator used when printing
	minArgs int
	maxArgs int // variadic for no upper bound
	eval    evalFunc
	check   func(n *Expr) SyntaxCode
}

var (
	kindTable [kindCount]kindInfo
	// builtinKinds maps callable names (Plus, Table, ...) to their kind
	builtinKinds map[string]Kind
	// constantKinds maps predefined symbol names to their kind
	constantKinds map[string]Kind
)

func init() {
	atom := func(name string) kindInfo {
		return kindInfo{name: name, eval: evalSelf}
	}
	fixed := func(name string, n int, eval evalFunc) kindInfo {
		return kindInfo{name: name, minArgs: n, maxArgs: n, eval: eval}
	}
	ranged := func(name string, min, max int, eval evalFunc) kindInfo {
		return kindInfo{name: name, minArgs: min, maxArgs: max, eval: eval}
	}
	binary := func(name, op string) kindInfo {
		return kindInfo{name: name, op: op, minArgs: 2, maxArgs: 2, eval: evalBinary}
	}
	unary := func(name string) kindInfo {
		return kindInfo{name: name, minArgs: 1, maxArgs: 1, eval: evalUnaryMath}
	}

	kindTable = [kindCount]kindInfo{
		KindNull:        atom("Null"),
		KindNoPattern:   atom("NoPattern"),
		KindNoMatch:     {name: "NoMatch", eval: evalNoMatch},
		KindInteger:     atom("Integer"),
		KindReal:        atom("Real"),
		KindString:      atom("String"),
		KindBool:        atom("Bool"),
		KindSymbol:      {name: "Symbol", eval: evalSymbol},
		KindPi:          atom("Pi"),
		KindE:           atom("E"),
		KindGoldenRatio: atom("GoldenRatio"),
		KindAll:         atom("All"),
		KindAutomatic:   atom("Automatic"),
		KindNone:        atom("None"),

		KindPattern:    {name: "Pattern", minArgs: 1, maxArgs: 1, eval: evalSelf, check: checkPattern},
		KindSequence:   ranged("Sequence", 0, variadic, evalSequence),
		KindList:       ranged("List", 0, variadic, evalSequence),
		KindTable:      {name: "Table", minArgs: 2, maxArgs: 2, eval: evalTable, check: checkTable},
		KindExtract:    fixed("Extract", 2, evalExtract),
		KindAppend:     fixed("Append", 2, evalAppend),
		KindPrepend:    fixed("Prepend", 2, evalPrepend),
		KindReplace:    fixed("Replace", 3, evalReplace),
		KindInsert:     fixed("Insert", 3, evalInsert),
		KindJoin:       fixed("Join", 2, evalJoin),
		KindLength:     fixed("Length", 1, evalLength),
		KindFunction:   {name: "Function", minArgs: 2, maxArgs: 2, eval: evalSelf, check: checkFunction},
		KindEvaluateAt: fixed("EvaluateAt", 2, evalEvaluateAt),
		KindSet:        {name: "Set", minArgs: 2, maxArgs: 2, eval: evalSet, check: checkSet},
		KindDefine:     {name: "Define", minArgs: 2, maxArgs: 2, eval: evalDefine, check: checkDefine},
		KindBlock:      ranged("Block", 0, variadic, evalBlock),
		KindGlobal:     ranged("Global", 0, variadic, evalGlobal),
		KindReturn:     ranged("Return", 0, 1, evalReturn),
		KindBreak:      fixed("Break", 0, evalBreak),
		KindModule:     {name: "Module", minArgs: 2, maxArgs: 2, eval: evalModule, check: checkModule},
		KindIf:         ranged("If", 2, 3, evalIf),
		KindFor:        fixed("For", 4, evalFor),

		KindPlus:         binary("Plus", "+"),
		KindSubtract:     binary("Subtract", "-"),
		KindMultiply:     binary("Multiply", "*"),
		KindDivide:       binary("Divide", "/"),
		KindMod:          binary("Mod", "%"),
		KindPower:        binary("Power", "^"),
		KindMinus:        {name: "Minus", op: "-", minArgs: 1, maxArgs: 1, eval: evalMinus},
		KindSin:          unary("Sin"),
		KindCos:          unary("Cos"),
		KindTan:          unary("Tan"),
		KindSinh:         unary("Sinh"),
		KindCosh:         unary("Cosh"),
		KindExp:          unary("Exp"),
		KindLog:          unary("Log"),
		KindNot:          {name: "Not", op: "!", minArgs: 1, maxArgs: 1, eval: evalNot},
		KindAnd:          binary("And", "&&"),
		KindOr:           binary("Or", "||"),
		KindGreater:      binary("Greater", ">"),
		KindLess:         binary("Less", "<"),
		KindEqual:        binary("Equal", "=="),
		KindNotEqual:     binary("NotEqual", "!="),
		KindGreaterEqual: binary("GreaterEqual", ">="),
		KindLessEqual:    binary("LessEqual", "<="),

		KindPrint:           ranged("Print", 0, variadic, evalPrint),
		KindIterator:        {name: "Iterator", minArgs: 1, maxArgs: 2, eval: evalIterator, check: checkIterator},
		KindCreator:         {name: "Creator", minArgs: 1, maxArgs: 2, eval: evalCreator, check: checkCreator},
		KindImport:          fixed("Import", 1, evalImport),
		KindRandom:          ranged("Random", 0, 2, evalRandom),
		KindRandomInteger:   ranged("RandomInteger", 0, 2, evalRandomInteger),
		KindSeed:            ranged("Seed", 0, 1, evalSeed),
		KindToString:        fixed("ToString", 1, evalToString),
		KindRange:           ranged("Range", 1, 3, evalRange),
		KindHammingDistance: fixed("HammingDistance", 2, evalHammingDistance),
	}

	builtinKinds = make(map[string]Kind)
	constantKinds = make(map[string]Kind)
	for k := Kind(0); k < kindCount; k++ {
		info := kindTable[k]
		if info.name == "" || info.eval == nil {
			panic(fmt.Sprintf("simkernel: kind %d has no dispatch entry", k))
		}
		switch {
		case k >= KindPi && k <= KindNone:
			constantKinds[info.name] = k
		case k >= KindPattern && k != KindGlobal:
			builtinKinds[info.name] = k
		}
	}
}

func (k Kind) String() string {
	if k < kindCount {
		return kindTable[k].name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// LookupBuiltin returns the kind of a callable builtin such as "Plus"
func LookupBuiltin(name string) (Kind, bool) {
	k, ok := builtinKinds[name]
	return k, ok
}

// LookupConstant returns the kind of a predefined symbol such as "Pi"
func LookupConstant(name string) (Kind, bool) {
	k, ok := constantKinds[name]
	return k, ok
}
