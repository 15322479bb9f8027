// Package configpaths resolves the search locations for hidra
// configuration files.
package configpaths

import (
	"os"
	"path/filepath"
	"strings"
)

const appDirName = "hidra"

// DefaultConfigDir returns the per-user configuration directory.
func DefaultConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appDirName), nil
}

// ConfigCandidatePaths returns the configuration file paths to try,
// grouped by format, in priority order: working directory, user
// config directory, system config directory. userPath, when set, is
// sorted into the matching group by extension and tried first.
func ConfigCandidatePaths(userPath string) (jsonPaths, yamlPaths, tomlPaths []string) {
	var dirs []string
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	if d, err := DefaultConfigDir(); err == nil {
		dirs = append(dirs, d)
	}
	if d, err := SystemConfigDir(); err == nil {
		dirs = append(dirs, d)
	}

	for _, d := range dirs {
		jsonPaths = append(jsonPaths, filepath.Join(d, "hidra.json"))
		yamlPaths = append(yamlPaths, filepath.Join(d, "hidra.yaml"), filepath.Join(d, "hidra.yml"))
		tomlPaths = append(tomlPaths, filepath.Join(d, "hidra.toml"))
	}

	if userPath != "" {
		switch strings.ToLower(filepath.Ext(userPath)) {
		case ".yaml", ".yml":
			yamlPaths = append([]string{userPath}, yamlPaths...)
		case ".toml":
			tomlPaths = append([]string{userPath}, tomlPaths...)
		default:
			jsonPaths = append([]string{userPath}, jsonPaths...)
		}
	}
	return jsonPaths, yamlPaths, tomlPaths
}
