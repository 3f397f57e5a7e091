package universe

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokIllegal
	tokIdent
	tokLT
	tokGT
	tokComma
	tokDot
	tokQuestion
	tokAmp
	tokLBracket
	tokRBracket
)

var tokenNames = map[tokenType]string{
	tokEOF:      "end of input",
	tokIllegal:  "illegal character",
	tokIdent:    "identifier",
	tokLT:       "'<'",
	tokGT:       "'>'",
	tokComma:    "','",
	tokDot:      "'.'",
	tokQuestion: "'?'",
	tokAmp:      "'&'",
	tokLBracket: "'['",
	tokRBracket: "']'",
}

func (t tokenType) String() string { return tokenNames[t] }

type token struct {
	Type    tokenType
	Literal string
	Pos     int
}

func (t token) String() string {
	if t.Type == tokIdent || t.Type == tokIllegal {
		return fmt.Sprintf("%q", t.Literal)
	}
	return t.Type.String()
}

// lexer splits a type expression such as "java.util.Map<K, ? super V>[]".
// '>' is always a single token so that ">>" closes two argument lists.
type lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
}

func newLexer(input string) *lexer {
	l := &lexer{input: input}
	l.readChar()
	return l
}

func (l *lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
}

func (l *lexer) NextToken() token {
	l.skipWhitespace()

	pos := l.position
	var typ tokenType
	switch l.ch {
	case 0:
		return token{Type: tokEOF, Pos: pos}
	case '<':
		typ = tokLT
	case '>':
		typ = tokGT
	case ',':
		typ = tokComma
	case '.':
		typ = tokDot
	case '?':
		typ = tokQuestion
	case '&':
		typ = tokAmp
	case '[':
		typ = tokLBracket
	case ']':
		typ = tokRBracket
	default:
		if isIdentStart(l.ch) {
			return token{Type: tokIdent, Literal: l.readIdentifier(), Pos: pos}
		}
		ch := l.ch
		l.readChar()
		return token{Type: tokIllegal, Literal: string(ch), Pos: pos}
	}
	l.readChar()
	return token{Type: typ, Literal: tokenNames[typ], Pos: pos}
}

func (l *lexer) readIdentifier() string {
	position := l.position
	for isIdentStart(l.ch) || unicode.IsDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.readChar()
	}
}

func isIdentStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_' || ch == '$'
}
