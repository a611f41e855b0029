// Package env expands ${env.KEY} references in configuration documents.
package env

import (
	"os"
	"regexp"
)

var reference = regexp.MustCompile(`\$\{env\.([\pL\pN_]*)\}`)

// LookupFunc resolves a variable; override in tests.
var LookupFunc = os.Getenv

// Expand replaces every ${env.KEY} with the value of KEY, or "" when unset.
// Malformed references are left as they are.
func Expand(text string) string {
	return reference.ReplaceAllStringFunc(text, func(match string) string {
		return LookupFunc(reference.FindStringSubmatch(match)[1])
	})
}
