// RAScript
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of RAScript.
//
// RAScript is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// RAScript is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with RAScript.  If not, see <http://www.gnu.org/licenses/>.

// Package parser turns script source into expression trees.
//
// Parsing never fails outright. Every problem becomes an
// *ast.ErrorExpression in the tree and in Script.Errors, and the parser
// resynchronizes at the next line so all syntax errors in a script are
// reported together.
package parser

import (
	"errors"
	"math"
	"strconv"
	"unicode"

	"github.com/ZaparooProject/rascript/pkg/rascript/ast"
	"github.com/ZaparooProject/rascript/pkg/rascript/tokenizer"
)

var (
	ErrSyntax            = errors.New("syntax error")
	ErrUnexpectedEnd     = errors.New("unexpected end of script")
	ErrNumberTooLarge    = errors.New("number too large")
	ErrNoMeaning         = errors.New("expression has no meaning")
	ErrInvalidAssignment = errors.New("invalid assignment target")
	ErrReservedWord      = errors.New("reserved word")
)

var keywords = map[string]bool{
	"function": true,
	"if":       true,
	"else":     true,
	"for":      true,
	"in":       true,
	"return":   true,
	"true":     true,
	"false":    true,
}

type parser struct {
	tok      *tokenizer.Tokenizer
	comments []*ast.Comment
	errors   []*ast.ErrorExpression
}

// mark saves the parser position for lookahead. Comments and errors
// found while looking ahead are dropped on reset; they are found again.
type mark struct {
	tok      tokenizer.Mark
	comments int
	errors   int
}

func (p *parser) mark() mark {
	return mark{tok: p.tok.Mark(), comments: len(p.comments), errors: len(p.errors)}
}

func (p *parser) reset(m mark) {
	p.tok.Reset(m.tok)
	p.comments = p.comments[:m.comments]
	p.errors = p.errors[:m.errors]
}

// Parse parses a whole script.
func Parse(source string) *Script {
	p := &parser{tok: tokenizer.New(source)}
	s := &Script{}
	for {
		p.skip()
		if p.tok.AtEnd() {
			break
		}
		before := p.tok.Location()
		stmt := p.statement()
		s.Statements = append(s.Statements, stmt)
		if isError(stmt) {
			p.resync(false)
			if p.tok.Location() == before {
				p.tok.Advance()
			}
		}
	}
	s.Comments = p.comments
	s.Errors = p.errors
	s.buildGroups()
	return s
}

// ParseExpression parses a single statement from t. Comments are
// discarded.
func ParseExpression(t *tokenizer.Tokenizer) ast.Expression {
	p := &parser{tok: t}
	p.skip()
	if t.AtEnd() {
		return p.fail(ErrUnexpectedEnd, p.here(), "unexpected end of script")
	}
	return p.statement()
}

func isError(e ast.Expression) bool {
	_, ok := e.(*ast.ErrorExpression)
	return ok
}

func (p *parser) rangeFrom(start tokenizer.Location) ast.TextRange {
	return ast.TextRange{Start: start, End: p.tok.LastLocation()}
}

func (p *parser) here() ast.TextRange {
	loc := p.tok.Location()
	return ast.TextRange{Start: loc, End: loc}
}

func (p *parser) fail(sentinel error, r ast.TextRange, format string, args ...any) *ast.ErrorExpression {
	e := ast.Errorf(r, format, args...)
	e.Err = sentinel
	p.errors = append(p.errors, e)
	return e
}

// expected reports that what was needed at the current position.
func (p *parser) expected(what string) *ast.ErrorExpression {
	if p.tok.AtEnd() {
		return p.fail(ErrUnexpectedEnd, p.here(), "unexpected end of script, expected %s", what)
	}
	return p.fail(ErrSyntax, p.here(), "expected %s, found '%c'", what, p.tok.NextChar())
}

// resync skips the rest of the line after an error. Inside a block it
// stops before an unmatched closing brace so the block can end.
func (p *parser) resync(inBlock bool) {
	depth := 0
	for !p.tok.AtEnd() {
		switch p.tok.NextChar() {
		case '\n':
			return
		case '{':
			depth++
		case '}':
			if depth == 0 && inBlock {
				return
			}
			depth--
		}
		p.tok.Advance()
	}
}

// skip consumes whitespace and comments. Comments are kept aside.
func (p *parser) skip() {
	for {
		p.tok.SkipWhitespace()
		if p.tok.NextChar() != '/' {
			return
		}
		start := p.tok.Location()
		switch p.tok.PeekChar(1) {
		case '/':
			text := p.tok.ReadToEndOfLine()
			p.comments = append(p.comments, ast.NewComment(text, p.rangeFrom(start)))
		case '*':
			p.tok.Advance()
			p.tok.Advance()
			body, ok := p.tok.ReadUntil("*/")
			p.comments = append(p.comments, ast.NewComment("/*"+body+"*/", p.rangeFrom(start)))
			if !ok {
				p.fail(ErrUnexpectedEnd, p.rangeFrom(start), "unterminated comment")
			}
		default:
			return
		}
	}
}

// peekAssign reports whether the next character is a lone '='.
func (p *parser) peekAssign() bool {
	if p.tok.NextChar() != '=' {
		return false
	}
	next := p.tok.PeekChar(1)
	return next != '=' && next != '>'
}

func (p *parser) statement() ast.Expression {
	start := p.tok.Location()
	m := p.mark()
	switch p.tok.ReadIdentifier() {
	case "function":
		return p.functionDefinition(start)
	case "if":
		return p.ifStatement(start)
	case "for":
		return p.forStatement(start)
	case "return":
		return p.returnStatement(start)
	case "else":
		return p.fail(ErrSyntax, p.rangeFrom(start), "else without if")
	}
	p.reset(m)

	expr := p.expression()
	switch e := expr.(type) {
	case *ast.Variable:
		return p.fail(ErrNoMeaning, e.Range(), "%s has no meaning", e.Name)
	case *ast.IntegerConstant, *ast.FloatConstant, *ast.BooleanConstant, *ast.StringConstant:
		return p.fail(ErrNoMeaning, e.Range(), "%s has no meaning", e.String())
	}
	return expr
}

func (p *parser) block() []ast.Expression {
	p.skip()
	if !p.tok.Match("{") {
		return []ast.Expression{p.statement()}
	}
	var out []ast.Expression
	for {
		p.skip()
		if p.tok.Match("}") {
			return out
		}
		if p.tok.AtEnd() {
			return append(out, p.expected("'}'"))
		}
		stmt := p.statement()
		out = append(out, stmt)
		if isError(stmt) {
			p.resync(true)
		}
	}
}

func (p *parser) functionDefinition(start tokenizer.Location) ast.Expression {
	p.skip()
	nameStart := p.tok.Location()
	name := p.tok.ReadIdentifier()
	if name == "" {
		return p.expected("function name")
	}
	if keywords[name] {
		return p.fail(ErrReservedWord, p.rangeFrom(nameStart), "%s is a reserved word", name)
	}
	nameDef := ast.NewVariableDefinition(name, p.rangeFrom(nameStart))

	p.skip()
	if !p.tok.Match("(") {
		return p.expected("'('")
	}
	params, defaults, variadic, failure := p.parameterList()
	if failure != nil {
		return failure
	}

	p.skip()
	var body []ast.Expression
	switch {
	case p.tok.Match("=>"):
		p.skip()
		value := p.expression()
		if isError(value) {
			return value
		}
		body = []ast.Expression{ast.NewReturn(value, value.Range())}
	case p.tok.NextChar() == '{':
		body = p.block()
	default:
		return p.expected("'{' or '=>'")
	}

	def := ast.NewFunctionDefinition(nameDef, params, body, p.rangeFrom(start))
	def.Defaults = defaults
	def.Variadic = variadic
	return def
}

// parameterList parses parameter declarations after the opening
// parenthesis, up to and including the closing one.
func (p *parser) parameterList() (
	params []*ast.VariableDefinition,
	defaults map[string]ast.Expression,
	variadic bool,
	failure *ast.ErrorExpression,
) {
	p.skip()
	if p.tok.Match(")") {
		return params, defaults, false, nil
	}
	for {
		p.skip()
		start := p.tok.Location()
		name := p.tok.ReadIdentifier()
		if name == "" {
			return nil, nil, false, p.expected("parameter name")
		}
		if keywords[name] {
			return nil, nil, false, p.fail(ErrReservedWord, p.rangeFrom(start), "%s is a reserved word", name)
		}
		def := ast.NewVariableDefinition(name, p.rangeFrom(start))
		for _, existing := range params {
			if existing.Name == name {
				return nil, nil, false, p.fail(ErrSyntax, def.Range(), "parameter %s is declared more than once", name)
			}
		}
		params = append(params, def)

		p.skip()
		if p.tok.Match("...") {
			p.skip()
			if !p.tok.Match(")") {
				return nil, nil, false, p.expected("')' after variadic parameter")
			}
			return params, defaults, true, nil
		}

		if p.peekAssign() {
			p.tok.Advance()
			p.skip()
			value := p.logicalOr()
			if e, ok := value.(*ast.ErrorExpression); ok {
				return nil, nil, false, e
			}
			if defaults == nil {
				defaults = make(map[string]ast.Expression)
			}
			defaults[name] = value
			p.skip()
		} else if len(defaults) > 0 {
			return nil, nil, false, p.fail(ErrSyntax, def.Range(),
				"non-default parameter %s appears after default parameters", name)
		}

		if p.tok.Match(")") {
			return params, defaults, false, nil
		}
		if !p.tok.Match(",") {
			return nil, nil, false, p.expected("',' or ')'")
		}
	}
}

func (p *parser) ifStatement(start tokenizer.Location) ast.Expression {
	cond := p.expression()
	if isError(cond) {
		return cond
	}
	then := p.block()

	var els []ast.Expression
	m := p.mark()
	p.skip()
	if p.tok.ReadIdentifier() == "else" {
		els = p.block()
	} else {
		p.reset(m)
	}
	return ast.NewIf(cond, then, els, p.rangeFrom(start))
}

func (p *parser) forStatement(start tokenizer.Location) ast.Expression {
	p.skip()
	iterStart := p.tok.Location()
	name := p.tok.ReadIdentifier()
	if name == "" {
		return p.expected("loop variable")
	}
	if keywords[name] {
		return p.fail(ErrReservedWord, p.rangeFrom(iterStart), "%s is a reserved word", name)
	}
	iterator := ast.NewVariableDefinition(name, p.rangeFrom(iterStart))

	p.skip()
	if p.tok.ReadIdentifier() != "in" {
		return p.expected("'in'")
	}
	iterable := p.expression()
	if isError(iterable) {
		return iterable
	}
	body := p.block()
	return ast.NewFor(iterator, iterable, body, p.rangeFrom(start))
}

func (p *parser) returnStatement(start tokenizer.Location) ast.Expression {
	p.tok.SkipSpaces()
	switch p.tok.NextChar() {
	case '\n', '\r', '}', tokenizer.EOF:
		return ast.NewReturn(nil, p.rangeFrom(start))
	case '/':
		if next := p.tok.PeekChar(1); next == '/' || next == '*' {
			return ast.NewReturn(nil, p.rangeFrom(start))
		}
	}
	value := p.expression()
	if isError(value) {
		return value
	}
	return ast.NewReturn(value, p.rangeFrom(start))
}

func (p *parser) expression() ast.Expression {
	return p.assignment()
}

// assignment is right associative and only accepts a variable or an
// index as its target.
func (p *parser) assignment() ast.Expression {
	left := p.logicalOr()
	if isError(left) {
		return left
	}
	m := p.mark()
	p.skip()
	if !p.peekAssign() {
		p.reset(m)
		return left
	}
	p.tok.Advance()
	p.skip()
	right := p.assignment()
	if isError(right) {
		return right
	}

	switch target := left.(type) {
	case *ast.Variable:
		if target.IsLogicalUnit() {
			break
		}
		return ast.NewAssignment(ast.NewVariableDefinition(target.Name, target.Range()), right)
	case *ast.Index:
		return ast.NewAssignment(target, right)
	}
	return p.fail(ErrInvalidAssignment, left.Range(), "cannot assign to %s", ast.TypeName(left))
}

// joinConditional flattens chains of the same logical operator. Logical
// units keep their grouping.
func joinConditional(op ast.ConditionalOperation, left, right ast.Expression) ast.Expression {
	if c, ok := left.(*ast.Conditional); ok && c.Operation == op && !c.IsLogicalUnit() {
		conds := make([]ast.Expression, 0, len(c.Conditions)+1)
		conds = append(conds, c.Conditions...)
		return ast.NewConditional(op, append(conds, right)...)
	}
	return ast.NewConditional(op, left, right)
}

func (p *parser) logicalOr() ast.Expression {
	left := p.logicalAnd()
	for !isError(left) {
		m := p.mark()
		p.skip()
		if !p.tok.Match("||") {
			p.reset(m)
			break
		}
		right := p.logicalAnd()
		if isError(right) {
			return right
		}
		left = joinConditional(ast.Or, left, right)
	}
	return left
}

func (p *parser) logicalAnd() ast.Expression {
	left := p.comparison()
	for !isError(left) {
		m := p.mark()
		p.skip()
		if !p.tok.Match("&&") {
			p.reset(m)
			break
		}
		right := p.comparison()
		if isError(right) {
			return right
		}
		left = joinConditional(ast.And, left, right)
	}
	return left
}

func (p *parser) comparisonOperator() (ast.ComparisonOperation, bool) {
	switch {
	case p.tok.Match("=="):
		return ast.ComparisonEqual, true
	case p.tok.Match("!="):
		return ast.ComparisonNotEqual, true
	case p.tok.Match("<="):
		return ast.ComparisonLessThanOrEqual, true
	case p.tok.Match(">="):
		return ast.ComparisonGreaterThanOrEqual, true
	case p.tok.Match("<"):
		return ast.ComparisonLessThan, true
	case p.tok.Match(">"):
		return ast.ComparisonGreaterThan, true
	default:
		return 0, false
	}
}

func (p *parser) comparison() ast.Expression {
	left := p.bitwiseAnd()
	for !isError(left) {
		m := p.mark()
		p.skip()
		op, ok := p.comparisonOperator()
		if !ok {
			p.reset(m)
			break
		}
		right := p.bitwiseAnd()
		if isError(right) {
			return right
		}
		left = ast.NewComparison(left, op, right)
	}
	return left
}

func (p *parser) bitwiseAnd() ast.Expression {
	left := p.additive()
	for !isError(left) {
		m := p.mark()
		p.skip()
		if p.tok.NextChar() != '&' || p.tok.PeekChar(1) == '&' {
			p.reset(m)
			break
		}
		p.tok.Advance()
		right := p.additive()
		if isError(right) {
			return right
		}
		left = ast.NewMathematic(left, ast.BitwiseAnd, right)
	}
	return left
}

func (p *parser) additive() ast.Expression {
	left := p.multiplicative()
	for !isError(left) {
		m := p.mark()
		p.skip()
		c := p.tok.NextChar()
		if (c != '+' && c != '-') || p.tok.PeekChar(1) == '=' {
			p.reset(m)
			break
		}
		p.tok.Advance()

		op := ast.Add
		if c == '-' {
			op = ast.Subtract
		}

		var right ast.Expression
		if _, isString := left.(*ast.StringConstant); isString && op == ast.Add {
			// appending to a string binds looser than arithmetic
			right = p.additive()
		} else {
			right = p.multiplicative()
		}
		if isError(right) {
			return right
		}
		left = ast.NewMathematic(left, op, right)
	}
	return left
}

func (p *parser) multiplicative() ast.Expression {
	left := p.unary()
	for !isError(left) {
		m := p.mark()
		p.skip()
		var op ast.MathematicOperation
		switch p.tok.NextChar() {
		case '*':
			op = ast.Multiply
		case '/':
			op = ast.Divide
		case '%':
			op = ast.Modulus
		default:
			p.reset(m)
			return left
		}
		if p.tok.PeekChar(1) == '=' {
			p.reset(m)
			return left
		}
		p.tok.Advance()
		right := p.unary()
		if isError(right) {
			return right
		}
		left = ast.NewMathematic(left, op, right)
	}
	return left
}

func (p *parser) unary() ast.Expression {
	p.skip()
	start := p.tok.Location()
	switch p.tok.NextChar() {
	case '!':
		if p.tok.PeekChar(1) == '=' {
			break
		}
		p.tok.Advance()
		operand := p.unary()
		if isError(operand) {
			return operand
		}
		not := ast.NewConditional(ast.Not, operand)
		not.SetRange(p.rangeFrom(start))
		return not
	case '-':
		p.tok.Advance()
		p.skip()
		if unicode.IsDigit(p.tok.NextChar()) {
			return p.postfix(p.number(start, true))
		}
		operand := p.unary()
		if isError(operand) {
			return operand
		}
		zero := ast.NewInteger(0, ast.TextRange{Start: start, End: start})
		return ast.NewMathematic(zero, ast.Subtract, operand)
	case '~':
		p.tok.Advance()
		operand := p.unary()
		if isError(operand) {
			return operand
		}
		return ast.NewBitwiseInvert(operand, p.rangeFrom(start))
	}
	return p.postfix(p.primary())
}

// postfix applies calls and indexing. They must start on the same line
// as the expression they apply to.
func (p *parser) postfix(expr ast.Expression) ast.Expression {
	start := expr.Range().Start
	for !isError(expr) {
		m := p.mark()
		p.tok.SkipSpaces()
		switch p.tok.NextChar() {
		case '[':
			p.tok.Advance()
			p.skip()
			index := p.expression()
			if isError(index) {
				return index
			}
			p.skip()
			if !p.tok.Match("]") {
				return p.expected("']'")
			}
			expr = ast.NewIndex(expr, index, p.rangeFrom(start))
		case '(':
			name, ok := expr.(*ast.Variable)
			if !ok || name.IsLogicalUnit() {
				p.reset(m)
				return expr
			}
			p.tok.Advance()
			args, failure := p.arguments()
			if failure != nil {
				return failure
			}
			expr = ast.NewFunctionCall(name, args, p.rangeFrom(start))
		default:
			p.reset(m)
			return expr
		}
	}
	return expr
}

// arguments parses call arguments after the opening parenthesis.
// Named arguments parse as assignments.
func (p *parser) arguments() ([]ast.Expression, *ast.ErrorExpression) {
	var args []ast.Expression
	p.skip()
	if p.tok.Match(")") {
		return args, nil
	}
	for {
		arg := p.expression()
		if e, ok := arg.(*ast.ErrorExpression); ok {
			return nil, e
		}
		args = append(args, arg)
		p.skip()
		if p.tok.Match(")") {
			return args, nil
		}
		if !p.tok.Match(",") {
			return nil, p.expected("',' or ')'")
		}
		p.skip()
	}
}

func (p *parser) primary() ast.Expression {
	p.skip()
	start := p.tok.Location()
	c := p.tok.NextChar()
	switch {
	case p.tok.AtEnd():
		return p.fail(ErrUnexpectedEnd, p.here(), "unexpected end of script")
	case unicode.IsDigit(c):
		return p.number(start, false)
	case c == '"':
		s, err := p.tok.ReadQuotedString()
		if err != nil {
			return p.fail(err, p.rangeFrom(start), "%s", err.Error())
		}
		return ast.NewString(s, p.rangeFrom(start))
	case c == '(':
		return p.parenthesized(start)
	case c == '[':
		return p.arrayLiteral(start)
	case c == '{':
		return p.dictionaryLiteral(start)
	case tokenizer.IsIdentifierStart(c):
		return p.identifier(start)
	default:
		return p.fail(ErrSyntax, p.here(), "unexpected character '%c'", c)
	}
}

func (p *parser) identifier(start tokenizer.Location) ast.Expression {
	name := p.tok.ReadIdentifier()
	r := p.rangeFrom(start)
	switch name {
	case "true":
		return ast.NewBoolean(true, r)
	case "false":
		return ast.NewBoolean(false, r)
	}
	if keywords[name] {
		return p.fail(ErrReservedWord, r, "unexpected %s", name)
	}

	m := p.mark()
	p.tok.SkipSpaces()
	if p.tok.Match("=>") {
		return p.lambda(start, []*ast.VariableDefinition{ast.NewVariableDefinition(name, r)}, nil)
	}
	p.reset(m)
	return ast.NewVariable(name, r)
}

// parenthesized parses a grouped expression or the parameter list of an
// anonymous function.
func (p *parser) parenthesized(start tokenizer.Location) ast.Expression {
	p.tok.Advance()
	var items []ast.Expression
	p.skip()
	if !p.tok.Match(")") {
		for {
			item := p.expression()
			if isError(item) {
				return item
			}
			items = append(items, item)
			p.skip()
			if p.tok.Match(")") {
				break
			}
			if !p.tok.Match(",") {
				return p.expected("')'")
			}
		}
	}
	r := p.rangeFrom(start)

	m := p.mark()
	p.skip()
	if p.tok.Match("=>") {
		return p.lambdaFromItems(start, items)
	}
	p.reset(m)

	switch len(items) {
	case 0:
		return p.fail(ErrSyntax, r, "expected expression")
	case 1:
	default:
		return p.fail(ErrSyntax, items[1].Range(), "expected ')'")
	}

	e := items[0]
	e.SetLogicalUnit(true)
	e.SetRange(r)
	return e
}

func (p *parser) lambdaFromItems(start tokenizer.Location, items []ast.Expression) ast.Expression {
	params := make([]*ast.VariableDefinition, 0, len(items))
	var defaults map[string]ast.Expression
	for _, item := range items {
		switch v := item.(type) {
		case *ast.Variable:
			if defaults != nil {
				return p.fail(ErrSyntax, v.Range(),
					"non-default parameter %s appears after default parameters", v.Name)
			}
			params = append(params, ast.NewVariableDefinition(v.Name, v.Range()))
		case *ast.Assignment:
			def, ok := v.Target.(*ast.VariableDefinition)
			if !ok {
				return p.fail(ErrSyntax, v.Range(), "expected parameter name")
			}
			if defaults == nil {
				defaults = make(map[string]ast.Expression)
			}
			defaults[def.Name] = v.Value
			params = append(params, def)
		default:
			return p.fail(ErrSyntax, item.Range(), "expected parameter name")
		}
	}
	return p.lambda(start, params, defaults)
}

func (p *parser) lambda(start tokenizer.Location, params []*ast.VariableDefinition,
	defaults map[string]ast.Expression,
) ast.Expression {
	p.skip()
	var body []ast.Expression
	if p.tok.NextChar() == '{' {
		body = p.block()
	} else {
		value := p.expression()
		if isError(value) {
			return value
		}
		body = []ast.Expression{ast.NewReturn(value, value.Range())}
	}
	def := ast.NewFunctionDefinition(nil, params, body, p.rangeFrom(start))
	def.Defaults = defaults
	return def
}

func (p *parser) arrayLiteral(start tokenizer.Location) ast.Expression {
	p.tok.Advance()
	var entries []ast.Expression
	for {
		p.skip()
		if p.tok.Match("]") {
			return ast.NewArray(entries, p.rangeFrom(start))
		}
		entry := p.expression()
		if isError(entry) {
			return entry
		}
		entries = append(entries, entry)
		p.skip()
		if p.tok.Match("]") {
			return ast.NewArray(entries, p.rangeFrom(start))
		}
		if !p.tok.Match(",") {
			return p.expected("',' or ']'")
		}
	}
}

func (p *parser) dictionaryLiteral(start tokenizer.Location) ast.Expression {
	p.tok.Advance()
	var entries []ast.DictionaryEntry
	for {
		p.skip()
		if p.tok.Match("}") {
			return ast.NewDictionary(entries, p.rangeFrom(start))
		}
		key := p.logicalOr()
		if isError(key) {
			return key
		}
		p.skip()
		if !p.tok.Match(":") {
			return p.expected("':'")
		}
		value := p.expression()
		if isError(value) {
			return value
		}
		entries = append(entries, ast.DictionaryEntry{Key: key, Value: value})
		p.skip()
		if p.tok.Match("}") {
			return ast.NewDictionary(entries, p.rangeFrom(start))
		}
		if !p.tok.Match(",") {
			return p.expected("',' or '}'")
		}
	}
}

// number parses a numeric literal. A leading minus sign is folded into
// the literal.
func (p *parser) number(start tokenizer.Location, negative bool) ast.Expression {
	n := p.tok.ReadNumber()
	r := p.rangeFrom(start)

	switch {
	case n.Float:
		f, err := strconv.ParseFloat(n.Text, 64)
		if err != nil {
			return p.fail(ErrNumberTooLarge, r, "number too large")
		}
		if negative {
			f = -f
		}
		return ast.NewFloat(f, r)

	case n.Hex:
		if n.Text == "" {
			return p.fail(ErrSyntax, r, "expected hex digits")
		}
		v, err := strconv.ParseUint(n.Text, 16, 32)
		if err != nil {
			return p.fail(ErrNumberTooLarge, r, "number too large")
		}
		if !negative {
			return ast.NewUnsigned(uint32(v), r)
		}
		if v > -math.MinInt32 {
			return p.fail(ErrNumberTooLarge, r, "number too large")
		}
		return ast.NewInteger(int32(-int64(v)), r)

	default:
		v, err := strconv.ParseInt(n.Text, 10, 64)
		if err != nil {
			return p.fail(ErrNumberTooLarge, r, "number too large")
		}
		if negative {
			v = -v
		}
		if v > math.MaxInt32 || v < math.MinInt32 {
			return p.fail(ErrNumberTooLarge, r, "number too large")
		}
		return ast.NewInteger(int32(v), r)
	}
}
