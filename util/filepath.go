package util

import (
	"os"
	"path/filepath"
)

// RootDir is the directory holding the running executable.
// Tests may replace it.
var RootDir = func() string {
	ec, _ := os.Executable()
	return filepath.Dir(ec)
}
