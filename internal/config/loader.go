package config

import (
	"os"
	"path/filepath"
)

// GetConfigPath determines the configuration file path based on command-line flags,
// environment variables, and default locations.
// Priority:
// 1. --config command-line flag
// 2. SCAMSIREN_CONFIG_PATH environment variable
// 3. config.yaml / config.json in the current working directory
// 4. config.yaml / config.json in the executable's directory
// An explicit flag that points at a missing file yields "" so the caller can report it.
func GetConfigPath(configFilePathFlag string) string {
	if configFilePathFlag != "" {
		if fileExists(configFilePathFlag) {
			return configFilePathFlag
		}
		return ""
	}

	if envPath := os.Getenv(EnvConfigPath); envPath != "" && fileExists(envPath) {
		return envPath
	}

	cwd, errCwd := os.Getwd()
	exePath, errExe := os.Executable()
	exeDir := ""
	if errExe == nil {
		exeDir = filepath.Dir(exePath)
	}

	defaultFiles := []string{"config.yaml", "config.yml", "config.json"}
	var locations []string
	if errCwd == nil {
		locations = append(locations, cwd)
	}
	if exeDir != "" && (errCwd != nil || exeDir != cwd) {
		locations = append(locations, exeDir)
	}

	for _, loc := range locations {
		for _, file := range defaultFiles {
			path := filepath.Join(loc, file)
			if fileExists(path) {
				return path
			}
		}
	}
	return ""
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
