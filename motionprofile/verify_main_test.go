package motionprofile

import (
	"testing"

	"github.com/treadline/pathfollow/testutils"
)

func TestMain(m *testing.M) {
	testutils.VerifyTestMain(m)
}
