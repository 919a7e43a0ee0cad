package normalize

import (
	"errors"
	"fmt"
)

// ErrAlreadyRun is returned when Run is called on a Pass that has left
// the NotStarted state.
var ErrAlreadyRun = errors.New("normalization pass already run")

// ScanFault is a failure while processing one node. The pass's transaction
// is rolled back when one occurs.
type ScanFault struct {
	NodeID int64
	Err    error
}

func (e *ScanFault) Error() string {
	return fmt.Sprintf("node %d: %v", e.NodeID, e.Err)
}

func (e *ScanFault) Unwrap() error {
	return e.Err
}
