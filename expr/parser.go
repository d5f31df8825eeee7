package expr

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// NodeType classifies AST nodes.
type NodeType int

const (
	NodeLitInt NodeType = iota
	NodeLitBool
	NodeVar
	NodeNot
	NodeAnd
	NodeOr
	NodeEq
	NodeNeq
	NodeLt
	NodeLe
	NodeGt
	NodeGe
	NodeAdd
	NodeSub
	NodeMul
	NodeDiv
	NodeMod
	NodeCall

	// Statements.
	NodeAssign    // Name := Children[0]
	NodeSend      // Name ! Children[0]
	NodeRecv      // Name ? Target
	NodeSkip      // skip
	NodeAtomic    // atomic{Children...}
	NodeHandshake // Children[0] | Children[1]
)

// Node is an AST node.
type Node struct {
	Type     NodeType
	IntVal   int
	BoolVal  bool
	Name     string // variable, function or channel
	Target   string // receive target
	Children []*Node
}

var opText = map[NodeType]string{
	NodeAnd: "&&",
	NodeOr:  "||",
	NodeEq:  "==",
	NodeNeq: "!=",
	NodeLt:  "<",
	NodeLe:  "<=",
	NodeGt:  ">",
	NodeGe:  ">=",
	NodeAdd: "+",
	NodeSub: "-",
	NodeMul: "*",
	NodeDiv: "/",
	NodeMod: "%",
}

// String renders n with every binary operation parenthesized.
func (n *Node) String() string {
	switch n.Type {
	case NodeLitInt:
		return strconv.Itoa(n.IntVal)
	case NodeLitBool:
		return strconv.FormatBool(n.BoolVal)
	case NodeVar:
		return n.Name
	case NodeNot:
		return "!" + n.Children[0].String()
	case NodeCall:
		args := make([]string, len(n.Children))
		for i, c := range n.Children {
			args[i] = c.String()
		}
		return n.Name + "(" + strings.Join(args, ", ") + ")"
	case NodeAssign:
		return n.Name + " := " + n.Children[0].String()
	case NodeSend:
		return n.Name + "!" + n.Children[0].String()
	case NodeRecv:
		return n.Name + "?" + n.Target
	case NodeSkip:
		return "skip"
	case NodeAtomic:
		parts := make([]string, len(n.Children))
		for i, c := range n.Children {
			parts[i] = c.String()
		}
		return "atomic{" + strings.Join(parts, "; ") + "}"
	case NodeHandshake:
		return n.Children[0].String() + " | " + n.Children[1].String()
	}
	if op, ok := opText[n.Type]; ok {
		return "(" + n.Children[0].String() + " " + op + " " + n.Children[1].String() + ")"
	}
	return "?"
}

// IsChannelOp reports whether n is a lone send or receive.
func (n *Node) IsChannelOp() bool {
	return n.Type == NodeSend || n.Type == NodeRecv
}

// Parser is a Pratt parser for guards and a recursive-descent parser for
// actions.
type Parser struct {
	tokens []Token
	pos    int
}

func newParser(input string) (*Parser, error) {
	tokens, err := Lex(input)
	if err != nil {
		return nil, err
	}
	return &Parser{tokens: tokens}, nil
}

// Parse parses a guard expression.
func Parse(input string) (*Node, error) {
	p, err := newParser(input)
	if err != nil {
		return nil, err
	}
	node, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return node, nil
}

// ParseAction parses an action: a single statement, a handshake
// "c!e | c?x", an atomic block, or statements separated by ';' which run
// as one atomic step. The empty action is skip.
func ParseAction(input string) (*Node, error) {
	if strings.TrimSpace(input) == "" {
		return &Node{Type: NodeSkip}, nil
	}
	p, err := newParser(input)
	if err != nil {
		return nil, err
	}
	stmts, err := p.parseStmts()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	if len(stmts) == 1 {
		return stmts[0], nil
	}
	return &Node{Type: NodeAtomic, Children: stmts}, nil
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() Token {
	t := p.peek()
	p.pos++
	return t
}

func (p *Parser) expect(tt TokenType) (Token, error) {
	t := p.advance()
	if t.Type != tt {
		return t, errors.Newf("expected %s, got %q at position %d", tt, t.Val, t.Pos)
	}
	return t, nil
}

func (p *Parser) expectEOF() error {
	if t := p.peek(); t.Type != TokEOF {
		return errors.Newf("unexpected token %q at position %d", t.Val, t.Pos)
	}
	return nil
}

func (p *Parser) parseStmts() ([]*Node, error) {
	var stmts []*Node
	for {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
		if p.peek().Type != TokSemi {
			return stmts, nil
		}
		p.advance()
	}
}

func (p *Parser) parseStmt() (*Node, error) {
	tok := p.peek()
	switch tok.Type {
	case TokSkip:
		p.advance()
		return &Node{Type: NodeSkip}, nil
	case TokAtomic:
		p.advance()
		if _, err := p.expect(TokLBrace); err != nil {
			return nil, err
		}
		body, err := p.parseStmts()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRBrace); err != nil {
			return nil, err
		}
		for _, s := range body {
			if s.Type == NodeHandshake {
				return nil, errors.Newf("handshake not allowed inside atomic block at position %d", tok.Pos)
			}
		}
		return &Node{Type: NodeAtomic, Children: body}, nil
	}

	left, err := p.parseSimple()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != TokPipe {
		return left, nil
	}
	pipe := p.advance()
	right, err := p.parseSimple()
	if err != nil {
		return nil, err
	}
	if !left.IsChannelOp() || !right.IsChannelOp() {
		return nil, errors.Newf("handshake at position %d must join two channel operations", pipe.Pos)
	}
	return &Node{Type: NodeHandshake, Children: []*Node{left, right}}, nil
}

// parseSimple parses an assignment, send, receive or skip.
func (p *Parser) parseSimple() (*Node, error) {
	if p.peek().Type == TokSkip {
		p.advance()
		return &Node{Type: NodeSkip}, nil
	}
	name, err := p.expect(TokIdent)
	if err != nil {
		return nil, err
	}
	op := p.advance()
	switch op.Type {
	case TokAssign:
		rhs, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		return &Node{Type: NodeAssign, Name: name.Val, Children: []*Node{rhs}}, nil
	case TokBang:
		val, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		return &Node{Type: NodeSend, Name: name.Val, Children: []*Node{val}}, nil
	case TokQuery:
		target, err := p.expect(TokIdent)
		if err != nil {
			return nil, err
		}
		return &Node{Type: NodeRecv, Name: name.Val, Target: target.Val}, nil
	default:
		return nil, errors.Newf("expected ':=', '!' or '?' after %q, got %q at position %d", name.Val, op.Val, op.Pos)
	}
}

// Precedence levels.
const (
	precNone    = 0
	precOr      = 1
	precAnd     = 2
	precCompare = 3
	precAdd     = 4
	precMul     = 5
	precUnary   = 6
)

func (p *Parser) parseExpr(minPrec int) (*Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		prec, nodeType, ok := infixInfo(tok.Type)
		if !ok || prec < minPrec {
			break
		}
		p.advance()
		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &Node{Type: nodeType, Children: []*Node{left, right}}
	}

	return left, nil
}

func (p *Parser) parseUnary() (*Node, error) {
	switch p.peek().Type {
	case TokBang:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Node{Type: NodeNot, Children: []*Node{operand}}, nil
	case TokMinus:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		// Represent as 0 - operand
		return &Node{Type: NodeSub, Children: []*Node{
			{Type: NodeLitInt, IntVal: 0},
			operand,
		}}, nil
	}
	return p.parseAtom()
}

func (p *Parser) parseAtom() (*Node, error) {
	tok := p.advance()

	switch tok.Type {
	case TokInt:
		v, err := strconv.Atoi(tok.Val)
		if err != nil {
			return nil, errors.Newf("invalid integer %q", tok.Val)
		}
		return &Node{Type: NodeLitInt, IntVal: v}, nil

	case TokTrue:
		return &Node{Type: NodeLitBool, BoolVal: true}, nil

	case TokFalse:
		return &Node{Type: NodeLitBool, BoolVal: false}, nil

	case TokIdent:
		if p.peek().Type == TokLParen && isBuiltin(tok.Val) {
			return p.parseCall(tok.Val)
		}
		return &Node{Type: NodeVar, Name: tok.Val}, nil

	case TokLParen:
		inner, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRParen); err != nil {
			return nil, err
		}
		return inner, nil

	default:
		return nil, errors.Newf("unexpected token %q at position %d", tok.Val, tok.Pos)
	}
}

var arity = map[string]int{
	"min":   2,
	"max":   2,
	"clamp": 3,
	"len":   1,
}

func isBuiltin(name string) bool {
	_, ok := arity[name]
	return ok
}

func (p *Parser) parseCall(name string) (*Node, error) {
	p.advance() // consume '('
	var args []*Node
	for {
		arg, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.peek().Type == TokComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	if want := arity[name]; len(args) != want {
		return nil, errors.Newf("%s requires %d arguments, got %d", name, want, len(args))
	}
	if name == "len" && args[0].Type != NodeVar {
		return nil, errors.New("len requires a channel name")
	}
	return &Node{Type: NodeCall, Name: name, Children: args}, nil
}

func infixInfo(tt TokenType) (prec int, nt NodeType, ok bool) {
	switch tt {
	case TokOr:
		return precOr, NodeOr, true
	case TokAnd:
		return precAnd, NodeAnd, true
	case TokEq:
		return precCompare, NodeEq, true
	case TokNeq:
		return precCompare, NodeNeq, true
	case TokLt:
		return precCompare, NodeLt, true
	case TokLe:
		return precCompare, NodeLe, true
	case TokGt:
		return precCompare, NodeGt, true
	case TokGe:
		return precCompare, NodeGe, true
	case TokPlus:
		return precAdd, NodeAdd, true
	case TokMinus:
		return precAdd, NodeSub, true
	case TokStar:
		return precMul, NodeMul, true
	case TokSlash:
		return precMul, NodeDiv, true
	case TokPercent:
		return precMul, NodeMod, true
	default:
		return 0, 0, false
	}
}
