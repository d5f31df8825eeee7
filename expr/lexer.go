// Package expr implements the guard and action language used by program
// graphs and channel systems: integer/boolean expressions, assignments,
// channel sends and receives, atomic blocks and rendezvous handshakes.
package expr

import (
	"unicode"

	"github.com/cockroachdb/errors"
)

// TokenType classifies lexer tokens.
type TokenType int

const (
	TokEOF TokenType = iota
	TokInt
	TokIdent
	TokTrue
	TokFalse
	TokSkip
	TokAtomic
	TokBang // ! (negation or send)
	TokAnd  // && and
	TokOr   // || or
	TokEq   // ==
	TokNeq  // !=
	TokLt   // <
	TokLe   // <=
	TokGt   // >
	TokGe   // >=
	TokPlus
	TokMinus
	TokStar
	TokSlash
	TokPercent
	TokLParen
	TokRParen
	TokComma
	TokAssign // :=
	TokQuery  // ?
	TokSemi
	TokLBrace
	TokRBrace
	TokPipe // |
)

var tokenNames = map[TokenType]string{
	TokEOF:    "end of input",
	TokInt:    "integer",
	TokIdent:  "identifier",
	TokRParen: "')'",
	TokRBrace: "'}'",
	TokLBrace: "'{'",
	TokAssign: "':='",
}

func (tt TokenType) String() string {
	if s, ok := tokenNames[tt]; ok {
		return s
	}
	return "token"
}

// Token is a single lexer token.
type Token struct {
	Type TokenType
	Val  string
	Pos  int
}

var keywords = map[string]TokenType{
	"true":   TokTrue,
	"false":  TokFalse,
	"not":    TokBang,
	"and":    TokAnd,
	"or":     TokOr,
	"skip":   TokSkip,
	"atomic": TokAtomic,
}

var twoChar = map[string]TokenType{
	"==": TokEq,
	"!=": TokNeq,
	"<=": TokLe,
	">=": TokGe,
	"&&": TokAnd,
	"||": TokOr,
	":=": TokAssign,
}

var oneChar = map[byte]TokenType{
	'!': TokBang,
	'<': TokLt,
	'>': TokGt,
	'+': TokPlus,
	'-': TokMinus,
	'*': TokStar,
	'/': TokSlash,
	'%': TokPercent,
	'(': TokLParen,
	')': TokRParen,
	',': TokComma,
	'?': TokQuery,
	';': TokSemi,
	'{': TokLBrace,
	'}': TokRBrace,
	'|': TokPipe,
}

// Lex tokenizes a guard or action string.
func Lex(input string) ([]Token, error) {
	var tokens []Token
	i := 0
	for i < len(input) {
		ch := rune(input[i])

		if unicode.IsSpace(ch) {
			i++
			continue
		}

		if unicode.IsDigit(ch) {
			start := i
			for i < len(input) && unicode.IsDigit(rune(input[i])) {
				i++
			}
			tokens = append(tokens, Token{TokInt, input[start:i], start})
			continue
		}

		if unicode.IsLetter(ch) || ch == '_' {
			start := i
			for i < len(input) && (unicode.IsLetter(rune(input[i])) || unicode.IsDigit(rune(input[i])) || input[i] == '_') {
				i++
			}
			word := input[start:i]
			tt, ok := keywords[word]
			if !ok {
				tt = TokIdent
			}
			tokens = append(tokens, Token{tt, word, start})
			continue
		}

		if i+1 < len(input) {
			if tt, ok := twoChar[input[i:i+2]]; ok {
				tokens = append(tokens, Token{tt, input[i : i+2], i})
				i += 2
				continue
			}
		}

		tt, ok := oneChar[input[i]]
		if !ok {
			return nil, errors.Newf("unexpected character %q at position %d", ch, i)
		}
		tokens = append(tokens, Token{tt, input[i : i+1], i})
		i++
	}
	tokens = append(tokens, Token{TokEOF, "", len(input)})
	return tokens, nil
}
