package config

import (
	"os"
	"path/filepath"
)

func configSearchPaths() []string {
	home, _ := os.UserHomeDir()
	return []string{
		filepath.Join(home, ".hostscope", "config.yaml"),
		"/etc/hostscope/agent.yaml",
	}
}
