package ids

import "github.com/segmentio/ksuid"

// New returns a k-sortable opaque identifier, used for verification
// tokens and OAuth state nonces.
func New() string {
	return ksuid.New().String()
}
