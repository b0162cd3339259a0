package log

import (
	"errors"
	"testing"
)

func TestFailureLoggersDoNotPanic(t *testing.T) {
	BackendFailure("commit", errors.New("boom"))
	IndexFailure("is_ancestor", errors.New("boom"))
	Debugf("visiting %d commits", 3)
}
