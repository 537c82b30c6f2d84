package file

import (
	"os"
	"path/filepath"
)

// HomeEnv overrides the application home directory.
const HomeEnv = "AIOFFICE_HOME"

// HomeDir returns the application home: $AIOFFICE_HOME, or ~/.aioffice.
func HomeDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".aioffice"), nil
}
