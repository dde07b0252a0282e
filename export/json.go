package export

import (
	"encoding/json"
	"io"
	"whiteboard/core"
)

// JSON writes s as indented JSON in its wire form.
func JSON(w io.Writer, s core.Snapshot) error {
	if s.Elements == nil {
		s.Elements = []core.Element{}
	}
	if s.Version == 0 {
		s.Version = core.SnapshotVersion
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
