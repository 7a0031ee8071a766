package testutils

import (
	"os"
	"testing"

	"go.viam.com/test"
)

// TempDir creates a temporary directory that is removed when the test ends.
func TempDir(t *testing.T, pattern string) string {
	t.Helper()
	dir, err := os.MkdirTemp("", pattern)
	test.That(t, err, test.ShouldBeNil)
	t.Cleanup(func() {
		test.That(t, os.RemoveAll(dir), test.ShouldBeNil)
	})
	return dir
}

// WriteTempFile writes `contents` to a new file inside `dir` and returns its path.
func WriteTempFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	f, err := os.CreateTemp(dir, name)
	test.That(t, err, test.ShouldBeNil)
	_, err = f.WriteString(contents)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, f.Close(), test.ShouldBeNil)
	return f.Name()
}
