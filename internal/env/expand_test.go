package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpand(t *testing.T) {
	lookup := LookupFunc
	defer func() { LookupFunc = lookup }()
	vars := map[string]string{"FOO": "bar", "A": "1", "B": "2", "X": "x"}
	LookupFunc = func(key string) string { return vars[key] }

	testCases := []struct {
		description string
		input       string
		expected    string
	}{
		{description: "no references", input: "just a plain string", expected: "just a plain string"},
		{description: "single reference", input: "value is ${env.FOO}", expected: "value is bar"},
		{description: "multiple references", input: "${env.A}-${env.B}-${env.A}", expected: "1-2-1"},
		{description: "unset variable", input: "unset=${env.NOTSET}-end", expected: "unset=-end"},
		{description: "missing closing brace", input: "start ${env.X and ${env.Y} end", expected: "start ${env.X and  end"},
		{description: "empty key", input: "oops ${env.} done", expected: "oops  done"},
		{description: "url", input: "mem://localhost/${env.FOO}/snapshots", expected: "mem://localhost/bar/snapshots"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.expected, Expand(tc.input))
		})
	}
}
