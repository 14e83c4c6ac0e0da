package simkernel

import (
	"strconv"
	"strings"
	"unicode"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokInteger
	tokReal
	tokString
	tokIdent
	tokOperator
)

// token is one lexeme with its position in the source
type token struct {
	typ  tokenType
	text string // operator or identifier text, raw number text, decoded string
	pos  SourcePosition
}

// operators lists the punctuation of the language, two character forms first
var operators = []string{
	":=", "==", "!=", "<=", ">=", "&&", "||",
	"=", "!", "<", ">", "+", "-", "*", "/", "%", "^", "@", ";", ",",
	"(", ")", "{", "}", "[", "]", "_",
}

// lexer turns source text into tokens, tracking line and column
type lexer struct {
	runes    []rune
	i        int
	line     int
	column   int
	filename string
}

func newLexer(source, filename string) *lexer {
	return &lexer{runes: []rune(source), line: 1, column: 1, filename: filename}
}

func (lx *lexer) peekAt(offset int) rune {
	if lx.i+offset < len(lx.runes) {
		return lx.runes[lx.i+offset]
	}
	return 0
}

func (lx *lexer) advance() {
	if lx.runes[lx.i] == '\n' {
		lx.line++
		lx.column = 1
	} else {
		lx.column++
	}
	lx.i++
}

func (lx *lexer) position() SourcePosition {
	return SourcePosition{Line: lx.line, Column: lx.column, Length: 1, Filename: lx.filename}
}

func (lx *lexer) errorAt(code SyntaxCode, pos SourcePosition, near string) *SyntaxError {
	return &SyntaxError{Code: code, Position: &pos, Near: near}
}

// skipSpace skips whitespace and the comment forms /* */, // and #
func (lx *lexer) skipSpace() error {
	for lx.i < len(lx.runes) {
		c := lx.runes[lx.i]
		switch {
		case unicode.IsSpace(c):
			lx.advance()
		case c == '#' || (c == '/' && lx.peekAt(1) == '/'):
			for lx.i < len(lx.runes) && lx.runes[lx.i] != '\n' {
				lx.advance()
			}
		case c == '/' && lx.peekAt(1) == '*':
			start := lx.position()
			lx.advance()
			lx.advance()
			for {
				if lx.i >= len(lx.runes) {
					return lx.errorAt(UnterminatedComment, start, "")
				}
				if lx.runes[lx.i] == '*' && lx.peekAt(1) == '/' {
					lx.advance()
					lx.advance()
					break
				}
				lx.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

func identStart(c rune) bool { return unicode.IsLetter(c) || c == '$' }

func identPart(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '$' || c == '.'
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }

// next returns the following token
func (lx *lexer) next() (token, error) {
	if err := lx.skipSpace(); err != nil {
		return token{}, err
	}
	pos := lx.position()
	if lx.i >= len(lx.runes) {
		return token{typ: tokEOF, pos: pos}, nil
	}
	start := lx.i
	c := lx.runes[lx.i]

	switch {
	case isDigit(c) || (c == '.' && isDigit(lx.peekAt(1))):
		typ := lx.scanNumber()
		pos.Length = lx.i - start
		return token{typ: typ, text: string(lx.runes[start:lx.i]), pos: pos}, nil

	case identStart(c):
		for lx.i < len(lx.runes) && identPart(lx.runes[lx.i]) {
			lx.advance()
		}
		pos.Length = lx.i - start
		return token{typ: tokIdent, text: string(lx.runes[start:lx.i]), pos: pos}, nil

	case c == '"':
		text, err := lx.scanString(pos)
		if err != nil {
			return token{}, err
		}
		pos.Length = lx.i - start
		return token{typ: tokString, text: text, pos: pos}, nil
	}

	for _, op := range operators {
		if lx.hasPrefix(op) {
			for range op {
				lx.advance()
			}
			pos.Length = len(op)
			return token{typ: tokOperator, text: op, pos: pos}, nil
		}
	}
	return token{}, lx.errorAt(UnexpectedCharacter, pos, string(c))
}

func (lx *lexer) hasPrefix(op string) bool {
	j := lx.i
	for _, r := range op {
		if j >= len(lx.runes) || lx.runes[j] != r {
			return false
		}
		j++
	}
	return true
}

// scanNumber consumes 12, 1., .5, 1.5, 1e3 and 2.5e-3
func (lx *lexer) scanNumber() tokenType {
	typ := tokInteger
	for lx.i < len(lx.runes) && isDigit(lx.runes[lx.i]) {
		lx.advance()
	}
	if lx.peekAt(0) == '.' {
		typ = tokReal
		lx.advance()
		for lx.i < len(lx.runes) && isDigit(lx.runes[lx.i]) {
			lx.advance()
		}
	}
	if c := lx.peekAt(0); c == 'e' || c == 'E' {
		digits := 1
		if s := lx.peekAt(1); s == '+' || s == '-' {
			digits = 2
		}
		if isDigit(lx.peekAt(digits)) {
			typ = tokReal
			for range digits {
				lx.advance()
			}
			for lx.i < len(lx.runes) && isDigit(lx.runes[lx.i]) {
				lx.advance()
			}
		}
	}
	return typ
}

// scanString consumes a double quoted string and decodes its escapes
func (lx *lexer) scanString(start SourcePosition) (string, error) {
	var sb strings.Builder
	lx.advance()
	for {
		if lx.i >= len(lx.runes) {
			return "", lx.errorAt(UnterminatedString, start, "")
		}
		c := lx.runes[lx.i]
		if c == '"' {
			lx.advance()
			return sb.String(), nil
		}
		if c != '\\' || lx.i+1 >= len(lx.runes) {
			sb.WriteRune(c)
			lx.advance()
			continue
		}
		lx.advance()
		e := lx.runes[lx.i]
		lx.advance()
		switch e {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'a':
			sb.WriteByte('\a')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case 'x':
			sb.WriteRune(lx.scanCode(16, 2))
		case '0', '1', '2', '3', '4', '5', '6', '7':
			lx.i--
			lx.column--
			sb.WriteRune(lx.scanCode(8, 3))
		default:
			// \\, \", \' and unknown escapes stand for the character itself
			sb.WriteRune(e)
		}
	}
}

// scanCode reads up to n digits of the given base as a character code
func (lx *lexer) scanCode(base, n int) rune {
	start := lx.i
	for lx.i < len(lx.runes) && lx.i-start < n && baseDigit(lx.runes[lx.i], base) {
		lx.advance()
	}
	v, err := strconv.ParseUint(string(lx.runes[start:lx.i]), base, 32)
	if err != nil {
		return unicode.ReplacementChar
	}
	return rune(v)
}

func baseDigit(c rune, base int) bool {
	if base == 8 {
		return c >= '0' && c <= '7'
	}
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
