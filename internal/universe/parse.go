package universe

import (
	"errors"
	"fmt"
	"strings"

	"github.com/funvibe/geninst/internal/config"
	ts "github.com/funvibe/geninst/internal/typesystem"
)

type resolver func(name string) (*ts.Class, error)

// Parse parses a type expression such as "java.util.List<? extends Number>".
// A leading generic declaration introduces query type variables:
//
//	<T extends Comparable<T>> java.util.List<T>
//
// Classes written without type arguments are raw.
func (u *Universe) Parse(text string) (*ts.Descriptor, error) {
	scope, rest, err := u.parseDeclaration(text)
	if err != nil {
		return nil, err
	}
	t, err := u.ParseType(rest, scope)
	if err != nil {
		return nil, err
	}
	return ts.FromType(t), nil
}

// ParseType parses a type expression in the given variable scope.
func (u *Universe) ParseType(text string, scope map[string]*ts.TVar) (ts.Type, error) {
	return parseTypeText(text, u.Lookup, scope)
}

// parseDeclaration splits a leading "<T extends ..., U>" off text and
// returns the declared variables with their bounds resolved.
func (u *Universe) parseDeclaration(text string) (map[string]*ts.TVar, string, error) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "<") {
		return nil, text, nil
	}
	names, end, err := scanTypeParamNames(trimmed)
	if err != nil {
		return nil, "", fmt.Errorf("parse %q: %w", text, err)
	}
	scope := make(map[string]*ts.TVar, len(names))
	for _, name := range names {
		scope[name] = ts.NewTVar(name, config.QueryDeclName)
	}

	p := newParser(trimmed[:end], u.Lookup, scope)
	p.parseTypeParams()
	if p.err == nil && !p.peekTokenIs(tokEOF) {
		p.peekError(tokEOF)
	}
	if p.err != nil {
		return nil, "", fmt.Errorf("parse %q: %w", text, p.err)
	}
	return scope, trimmed[end:], nil
}

func parseTypeText(text string, resolve resolver, scope map[string]*ts.TVar) (ts.Type, error) {
	p := newParser(text, resolve, scope)
	t := p.parseType()
	if p.err == nil && !p.peekTokenIs(tokEOF) {
		p.peekError(tokEOF)
	}
	if p.err != nil {
		return nil, fmt.Errorf("parse %q: %w", text, p.err)
	}
	return t, nil
}

// parseParamBounds parses a declared parameter such as "E extends Enum<E>"
// and stores the bounds on the variable already present in scope.
func parseParamBounds(text string, resolve resolver, scope map[string]*ts.TVar) error {
	p := newParser(text, resolve, scope)
	p.parseTypeParam()
	if p.err == nil && !p.peekTokenIs(tokEOF) {
		p.peekError(tokEOF)
	}
	if p.err != nil {
		return fmt.Errorf("parse %q: %w", text, p.err)
	}
	return nil
}

// paramName returns the variable name of a declared parameter text.
func paramName(text string) (string, error) {
	tok := newLexer(text).NextToken()
	if tok.Type != tokIdent {
		return "", fmt.Errorf("parse %q: expected type parameter name, got %s", text, tok)
	}
	return tok.Literal, nil
}

// scanTypeParamNames collects the names of a leading declaration so that
// bounds may refer to variables declared later. It returns the offset just
// past the closing '>'.
func scanTypeParamNames(text string) ([]string, int, error) {
	l := newLexer(text)
	if tok := l.NextToken(); tok.Type != tokLT {
		return nil, 0, fmt.Errorf("expected '<', got %s", tok)
	}
	var names []string
	seen := map[string]bool{}
	depth, expectName := 1, true
	for {
		tok := l.NextToken()
		switch tok.Type {
		case tokEOF:
			return nil, 0, errors.New("unterminated type parameter declaration")
		case tokIdent:
			if depth == 1 && expectName {
				if seen[tok.Literal] {
					return nil, 0, fmt.Errorf("duplicate type parameter %s", tok.Literal)
				}
				seen[tok.Literal] = true
				names = append(names, tok.Literal)
				expectName = false
			}
		case tokLT:
			depth++
		case tokGT:
			depth--
			if depth == 0 {
				return names, tok.Pos + 1, nil
			}
		case tokComma:
			if depth == 1 {
				expectName = true
			}
		}
	}
}

type parser struct {
	l       *lexer
	resolve resolver
	scope   map[string]*ts.TVar
	err     error

	curToken  token
	peekToken token
}

func newParser(input string, resolve resolver, scope map[string]*ts.TVar) *parser {
	p := &parser{l: newLexer(input), resolve: resolve, scope: scope}
	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()
	return p
}

func (p *parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *parser) curTokenIs(t tokenType) bool  { return p.curToken.Type == t }
func (p *parser) peekTokenIs(t tokenType) bool { return p.peekToken.Type == t }

func (p *parser) peekIsKeyword(kw string) bool {
	return p.peekToken.Type == tokIdent && p.peekToken.Literal == kw
}

func (p *parser) expectPeek(t tokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *parser) peekError(t tokenType) {
	p.fail(fmt.Errorf("at %d: expected %s, got %s", p.peekToken.Pos, t, p.peekToken))
}

// fail keeps the first error only.
func (p *parser) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

// parseType parses a single type starting at curToken and leaves curToken on
// its last token.
func (p *parser) parseType() ts.Type {
	var t ts.Type
	switch p.curToken.Type {
	case tokQuestion:
		return p.parseWildcard()
	case tokIdent:
		t = p.parseNamedType()
	default:
		p.fail(fmt.Errorf("at %d: expected type, got %s", p.curToken.Pos, p.curToken))
		return nil
	}
	if t == nil {
		return nil
	}
	for p.peekTokenIs(tokLBracket) {
		p.nextToken()
		if !p.expectPeek(tokRBracket) {
			return nil
		}
		t = ts.ArrayType(t)
	}
	return t
}

func (p *parser) parseWildcard() ts.Type {
	switch {
	case p.peekIsKeyword("extends"):
		p.nextToken()
		p.nextToken()
		upper := p.parseBounds()
		if upper == nil {
			return nil
		}
		return ts.TWildcard{Upper: upper}
	case p.peekIsKeyword("super"):
		p.nextToken()
		p.nextToken()
		lower := p.parseType()
		if lower == nil {
			return nil
		}
		return ts.TWildcard{Lower: []ts.Type{lower}}
	}
	return ts.Unbounded
}

// parseBounds parses "A & B & C".
func (p *parser) parseBounds() []ts.Type {
	first := p.parseType()
	if first == nil {
		return nil
	}
	bounds := []ts.Type{first}
	for p.peekTokenIs(tokAmp) {
		p.nextToken()
		p.nextToken()
		b := p.parseType()
		if b == nil {
			return nil
		}
		bounds = append(bounds, b)
	}
	return bounds
}

func (p *parser) parseNamedType() ts.Type {
	segments := []string{p.curToken.Literal}
	for p.peekTokenIs(tokDot) {
		p.nextToken()
		if !p.expectPeek(tokIdent) {
			return nil
		}
		segments = append(segments, p.curToken.Literal)
	}

	if len(segments) == 1 {
		if v, ok := p.scope[segments[0]]; ok {
			if p.peekTokenIs(tokLT) {
				p.fail(fmt.Errorf("type variable %s cannot have type arguments", v.Name))
				return nil
			}
			return v
		}
	}

	cls := p.resolveQualified(segments)
	if cls == nil {
		return nil
	}
	t := p.parseClassArgs(cls, nil)

	// Outer<X>.Inner<Y>
	for t != nil && p.peekTokenIs(tokDot) {
		p.nextToken()
		if !p.expectPeek(tokIdent) {
			return nil
		}
		inner, err := p.resolve(cls.Name + "$" + p.curToken.Literal)
		if err != nil {
			p.fail(err)
			return nil
		}
		cls = inner
		t = p.parseClassArgs(cls, t)
	}
	return t
}

// resolveQualified tries the dotted name first and then shorter prefixes as
// enclosing classes: a.b.Outer.Inner -> a.b.Outer$Inner, Map.Entry -> java.util.Map$Entry.
func (p *parser) resolveQualified(segments []string) *ts.Class {
	full := strings.Join(segments, ".")
	c, firstErr := p.resolve(full)
	if firstErr == nil {
		return c
	}
	for k := len(segments) - 1; k >= 1; k-- {
		outer, err := p.resolve(strings.Join(segments[:k], "."))
		if err != nil {
			continue
		}
		if c, err := p.resolve(outer.Name + "$" + strings.Join(segments[k:], "$")); err == nil {
			return c
		}
	}
	p.fail(firstErr)
	return nil
}

func (p *parser) parseClassArgs(cls *ts.Class, owner ts.Type) ts.Type {
	var args []ts.Type
	if p.peekTokenIs(tokLT) {
		if cls.IsPrimitive() {
			p.fail(fmt.Errorf("primitive %s cannot have type arguments", cls.Name))
			return nil
		}
		p.nextToken()
		args = p.parseTypeArgs()
		if args == nil {
			return nil
		}
	}

	if len(args) == 0 {
		if _, generic := owner.(ts.TParam); generic && !cls.IsStatic() && len(cls.Params) == 0 {
			return ts.TParam{Class: cls, Owner: owner}
		}
		return ts.TClass{Class: cls}
	}
	if len(args) != len(cls.Params) {
		p.fail(fmt.Errorf("wrong number of type arguments for %s: got %d, want %d",
			cls.Name, len(args), len(cls.Params)))
		return nil
	}
	if owner == nil && cls.Enclosing != nil {
		owner = ts.TClass{Class: cls.Enclosing}
	}
	return ts.TParam{Class: cls, Args: args, Owner: owner}
}

// parseTypeArgs parses "<A, B>" with curToken on '<'.
func (p *parser) parseTypeArgs() []ts.Type {
	if p.peekTokenIs(tokGT) {
		p.fail(fmt.Errorf("at %d: empty type argument list", p.peekToken.Pos))
		return nil
	}
	var args []ts.Type
	p.nextToken()
	for {
		arg := p.parseType()
		if arg == nil {
			return nil
		}
		args = append(args, arg)
		if !p.peekTokenIs(tokComma) {
			break
		}
		p.nextToken()
		p.nextToken()
	}
	if !p.expectPeek(tokGT) {
		return nil
	}
	return args
}

// parseTypeParams parses "<T extends A & B, U>" with curToken on '<'.
func (p *parser) parseTypeParams() {
	for {
		if !p.expectPeek(tokIdent) {
			return
		}
		p.parseTypeParam()
		if p.err != nil {
			return
		}
		if !p.peekTokenIs(tokComma) {
			break
		}
		p.nextToken()
	}
	p.expectPeek(tokGT)
}

// parseTypeParam parses "T" or "T extends A & B" with curToken on the name.
func (p *parser) parseTypeParam() {
	if !p.curTokenIs(tokIdent) {
		p.fail(fmt.Errorf("at %d: expected type parameter name, got %s", p.curToken.Pos, p.curToken))
		return
	}
	v, ok := p.scope[p.curToken.Literal]
	if !ok {
		p.fail(fmt.Errorf("undeclared type parameter %s", p.curToken.Literal))
		return
	}
	if !p.peekIsKeyword("extends") {
		return
	}
	p.nextToken()
	p.nextToken()
	if bounds := p.parseBounds(); bounds != nil {
		v.Bounds = bounds
	}
}
