package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".kestrel"

// Paths holds resolved filesystem paths for Kestrel data.
type Paths struct {
	Base   string // ~/.kestrel
	Config string // ~/.kestrel/config.yaml
	Data   string // ~/.kestrel/data
	Logs   string // ~/.kestrel/logs
}

// ResolvePaths computes all standard paths from the home directory.
// If KESTREL_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("KESTREL_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	return Paths{
		Base:   base,
		Config: filepath.Join(base, "config.yaml"),
		Data:   filepath.Join(base, "data"),
		Logs:   filepath.Join(base, "logs"),
	}, nil
}

// EnsureDirs creates all standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	dirs := []string{p.Base, p.Data, p.Logs}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}
