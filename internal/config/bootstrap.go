package config

import (
	"errors"
	"os"
	"path/filepath"
)

// EnsureUserConfig makes sure dataDir holds a config.json, seeding the
// template on first run. The created flag tells the caller to stop and
// let the user edit the file before anything touches the network.
func EnsureUserConfig(dataDir string) (path string, created bool, err error) {
	path = filepath.Join(dataDir, "config.json")

	_, err = os.Stat(path)
	if err == nil {
		return path, false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", false, err
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", false, err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(Template), 0o644); err != nil {
		return "", false, err
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", false, err
	}
	return path, true, nil
}
