package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMain(mc *testing.M) {
	logDir, err := os.MkdirTemp("", "tcrun-cmd-test")
	if err != nil {
		panic(err)
	}

	// Keep the rotating log out of the package directory.
	_ = os.Setenv("TCRUN_LOG_FILENAME", filepath.Join(logDir, "tcrun.log"))

	code := mc.Run()

	_ = os.RemoveAll(logDir)
	os.Exit(code)
}
