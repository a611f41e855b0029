// Package cmdline splits a command line into a program path and its
// arguments. Words are separated by whitespace; single quotes keep their
// content verbatim, double quotes honour backslash escapes. Adjacent words and
// quoted strings form a single argument.
package cmdline

import (
	"fmt"
	"strings"

	"github.com/viant/parsly"
)

// Command is a parsed command line
type Command struct {
	Path string
	Args []string
}

// Parse parses input into a command
func Parse(input string) (*Command, error) {
	cursor := parsly.NewCursor("", []byte(input), 0)
	var words []string
	var current strings.Builder
	pending := false
	flush := func() {
		if pending {
			words = append(words, current.String())
			current.Reset()
			pending = false
		}
	}
	for {
		matched := cursor.MatchAny(whitespaceToken, quotedToken, wordToken)
		switch matched.Code {
		case whitespaceCode:
			flush()
		case quotedCode:
			current.WriteString(unquote(matched.Text(cursor)))
			pending = true
		case wordCode:
			current.WriteString(matched.Text(cursor))
			pending = true
		case parsly.EOF:
			flush()
			if len(words) == 0 {
				return nil, fmt.Errorf("command line was empty")
			}
			return &Command{Path: words[0], Args: words[1:]}, nil
		default:
			return nil, fmt.Errorf("unterminated quote: %w", cursor.NewError(quotedToken, wordToken))
		}
	}
}

func unquote(text string) string {
	quote := text[0]
	body := text[1 : len(text)-1]
	if quote == '\'' {
		return body
	}
	var ret strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			i++
		}
		ret.WriteByte(body[i])
	}
	return ret.String()
}
