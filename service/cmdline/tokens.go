package cmdline

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes
const (
	whitespaceCode = iota + 1
	quotedCode
	wordCode
)

// Token definitions
var (
	whitespaceToken = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	quotedToken     = parsly.NewToken(quotedCode, "Quoted", &quotedMatcher{})
	wordToken       = parsly.NewToken(wordCode, "Word", &wordMatcher{})
)

// quotedMatcher matches a single or double quoted string; inside double
// quotes a backslash escapes the next byte.
type quotedMatcher struct{}

func (m *quotedMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	if pos >= size {
		return 0
	}
	quote := input[pos]
	if quote != '"' && quote != '\'' {
		return 0
	}
	for i := pos + 1; i < size; i++ {
		switch input[i] {
		case '\\':
			if quote == '"' {
				i++
			}
		case quote:
			return i - pos + 1
		}
	}
	return 0
}

// wordMatcher matches a run of bytes up to whitespace or a quote.
type wordMatcher struct{}

func (m *wordMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	matched := 0
	for i := pos; i < size; i++ {
		if isSpace(input[i]) || input[i] == '"' || input[i] == '\'' {
			break
		}
		matched++
	}
	return matched
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
