// Package snapshot stores execution context snapshots. Records are keyed by
// context ID and may be filtered by Path, Cwd, State or ImageDigest.
package snapshot

import (
	"github.com/viant/procexec/runtime/execution"
	"github.com/viant/procexec/service/dao"
	"github.com/viant/procexec/service/dao/criteria"
)

// Service is the snapshot DAO
type Service = dao.Service[string, execution.Snapshot]

// Key returns the record key
func Key(s *execution.Snapshot) string {
	return s.ID
}

// Filter reports whether s matches parameters
func Filter(s *execution.Snapshot, parameters []*dao.Parameter) bool {
	return criteria.Match(func(name string) (string, bool) {
		switch name {
		case "Path":
			return s.Path, true
		case "Cwd":
			return s.Cwd, true
		case "State":
			return s.State, true
		case "ImageDigest":
			return s.ImageDigest, true
		}
		return "", false
	}, parameters)
}
