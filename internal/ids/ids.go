package ids

import "github.com/segmentio/ksuid"

// New returns a sortable unique identifier for jobs and audit records.
func New() string {
	return ksuid.New().String()
}
