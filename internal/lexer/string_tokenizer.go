package lexer

import (
	"brewin/internal/token"
	"strings"
)

type StringTokenizer struct {
	lexer *Lexer
	start int // position of the opening quote
}

func NewStringTokenizer(lexer *Lexer, start int) *StringTokenizer {
	return &StringTokenizer{lexer: lexer, start: start}
}

func (s *StringTokenizer) NextToken() token.Token {
	var result strings.Builder

	// start reading the string right away, assume the opening `"` has already been read
	defer s.lexer.switchMode(NewGeneralTokenizer(s.lexer))

	for {
		switch s.lexer.ch {
		case 0, '\n':
			// strings never span lines
			return token.Token{Type: token.ILLEGAL, Literal: `"` + result.String(), Position: s.start}
		case '"':
			s.lexer.readChar() // Consume the closing `"`
			return token.Token{Type: token.STRING, Literal: result.String(), Position: s.start}
		case '\\':
			s.lexer.readChar() // Move to the escaped character
			switch s.lexer.ch {
			case 'n':
				result.WriteRune('\n')
			case 't':
				result.WriteRune('\t')
			case '\\':
				result.WriteRune('\\')
			case '"':
				result.WriteRune('"')
			case 0:
				return token.Token{Type: token.ILLEGAL, Literal: `"` + result.String(), Position: s.start}
			default:
				result.WriteRune('\\')
				result.WriteRune(s.lexer.ch)
			}
		default:
			result.WriteRune(s.lexer.ch)
		}
		s.lexer.readChar()
	}
}
