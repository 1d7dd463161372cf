package token

import "unicode"

type Type int

const (
	LParen Type = iota
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	LAngle
	RAngle
	Comma
	Colon
	Equals
	Arrow
	Star
	Bang
	Caret
	Dollar
	Ident
	Number
	String
	FuncName   // @name, also type attributes like @thick
	ValueName  // %0, %x
	MethodName // #name
)

func (t Type) String() string {
	switch t {
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case LBrace:
		return "'{'"
	case RBrace:
		return "'}'"
	case LBracket:
		return "'['"
	case RBracket:
		return "']'"
	case LAngle:
		return "'<'"
	case RAngle:
		return "'>'"
	case Comma:
		return "','"
	case Colon:
		return "':'"
	case Equals:
		return "'='"
	case Arrow:
		return "'->'"
	case Star:
		return "'*'"
	case Bang:
		return "'!'"
	case Caret:
		return "'^'"
	case Dollar:
		return "'$'"
	case Ident:
		return "identifier"
	case Number:
		return "number"
	case String:
		return "string"
	case FuncName:
		return "function name"
	case ValueName:
		return "value name"
	case MethodName:
		return "method name"
	}
	return "unknown"
}

// Token is one lexical element. Sigil-prefixed tokens (FuncName,
// ValueName, MethodName) carry Value without the sigil.
type Token struct {
	Value string
	Type  Type
	Line  int
}

var puncts = map[rune]Type{
	'(': LParen,
	')': RParen,
	'{': LBrace,
	'}': RBrace,
	'[': LBracket,
	']': RBracket,
	'<': LAngle,
	'>': RAngle,
	',': Comma,
	':': Colon,
	'=': Equals,
	'*': Star,
	'!': Bang,
	'^': Caret,
	'$': Dollar,
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.'
}

func Tokenize(input string) []Token {
	var tokens []Token
	line := 1
	runes := []rune(input)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == '\n' {
			line++
			continue
		}
		if unicode.IsSpace(r) {
			continue
		}

		// Line comment
		if r == '/' && i+1 < len(runes) && runes[i+1] == '/' {
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			line++
			continue
		}

		// Arrow must win over a bare '-'
		if r == '-' && i+1 < len(runes) && runes[i+1] == '>' {
			tokens = append(tokens, Token{"->", Arrow, line})
			i++
			continue
		}

		if typ, ok := puncts[r]; ok {
			tokens = append(tokens, Token{string(r), typ, line})
			continue
		}

		// String literal
		if r == '"' {
			start := i + 1
			i++
			for i < len(runes) && runes[i] != '"' {
				if runes[i] == '\\' {
					i++
				}
				i++
			}
			tokens = append(tokens, Token{string(runes[start:i]), String, line})
			continue
		}

		// Sigil-prefixed names
		if r == '@' || r == '%' || r == '#' {
			typ := FuncName
			switch r {
			case '%':
				typ = ValueName
			case '#':
				typ = MethodName
			}
			start := i + 1
			i++
			for i < len(runes) && isIdentRune(runes[i]) {
				i++
			}
			tokens = append(tokens, Token{string(runes[start:i]), typ, line})
			i--
			continue
		}

		// Number (including negative)
		if r == '-' || unicode.IsDigit(r) {
			start := i
			if r == '-' {
				i++
			}
			for i < len(runes) && unicode.IsDigit(runes[i]) {
				i++
			}
			tokens = append(tokens, Token{string(runes[start:i]), Number, line})
			i--
			continue
		}

		// Identifier (keywords, labels, type names)
		if unicode.IsLetter(r) || r == '_' {
			start := i
			for i < len(runes) && isIdentRune(runes[i]) {
				i++
			}
			tokens = append(tokens, Token{string(runes[start:i]), Ident, line})
			i--
			continue
		}
	}

	return tokens
}
