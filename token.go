package boundre

// TokenType labels a repetition operator found by the pattern scanner.
type TokenType int

const (
	TokenError    TokenType = iota
	TokenStar               // *
	TokenPlus               // +
	TokenQuestion           // ?
	TokenLBrace             // {
)

func (t TokenType) String() string {
	switch t {
	case TokenStar:
		return "*"
	case TokenPlus:
		return "+"
	case TokenQuestion:
		return "?"
	case TokenLBrace:
		return "{"
	}
	return "error"
}

// Token is a repetition operator and its byte span in the pattern source.
type Token struct {
	Type  TokenType
	Val   rune
	Start int
	End   int
}
