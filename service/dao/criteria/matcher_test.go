package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/procexec/service/dao"
)

func TestMatch(t *testing.T) {
	fields := func(name string) (string, bool) {
		switch name {
		case "Path":
			return "file:///bin/app", true
		case "State":
			return "ready", true
		}
		return "", false
	}
	testCases := []struct {
		description string
		parameters  []*dao.Parameter
		expected    bool
	}{
		{description: "no parameters", expected: true},
		{description: "single value match", parameters: []*dao.Parameter{dao.NewParameter("Path", "file:///bin/app")}, expected: true},
		{description: "single value mismatch", parameters: []*dao.Parameter{dao.NewParameter("Path", "file:///bin/other")}},
		{description: "any of values", parameters: []*dao.Parameter{dao.NewParameter("State", "running", "ready")}, expected: true},
		{description: "none of values", parameters: []*dao.Parameter{dao.NewParameter("State", "running", "blocked")}},
		{description: "unknown field ignored", parameters: []*dao.Parameter{dao.NewParameter("Owner", "root")}, expected: true},
		{
			description: "all parameters must match",
			parameters:  []*dao.Parameter{dao.NewParameter("Path", "file:///bin/app"), dao.NewParameter("State", "running")},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.expected, Match(fields, tc.parameters))
		})
	}
}
