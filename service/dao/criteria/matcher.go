package criteria

import (
	"github.com/viant/procexec/service/dao"
)

// Fields exposes named string fields of a record.
type Fields func(name string) (string, bool)

// Match reports whether a record satisfies every parameter. Parameters naming
// a field the record does not have are ignored.
func Match(fields Fields, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil {
			continue
		}
		value, ok := fields(parameter.Name)
		if !ok {
			continue
		}
		switch actual := parameter.Value.(type) {
		case string:
			if value != actual {
				return false
			}
		case []string:
			if !contains(actual, value) {
				return false
			}
		}
	}
	return true
}

func contains(values []string, value string) bool {
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}
	return false
}
