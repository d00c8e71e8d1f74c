// FILE: lixenwraith/lconfig/discovery.go
package lconfig

import (
	"os"
	"path/filepath"
)

// DiscoveryOptions configures where a schema defaults file is looked for
type DiscoveryOptions struct {
	// Application directory name under XDG config dirs
	AppName string

	// Base name of the defaults file (without extension)
	Name string

	// Extensions to try (in order)
	Extensions []string

	// Custom search directories, tried first
	Paths []string

	// Environment variable holding an explicit path
	EnvVar string

	// Whether to search in XDG config directories
	UseXDG bool

	// Whether to search in current directory for "<AppName>-<Name><ext>"
	UseCurrentDir bool
}

// DefaultDiscoveryOptions returns sensible defaults
func DefaultDiscoveryOptions() DiscoveryOptions {
	return DiscoveryOptions{
		AppName:       "lconfig",
		Name:          "defaults",
		Extensions:    []string{".toml", ".yaml", ".yml", ".json"},
		EnvVar:        "LCONFIG_DEFAULTS",
		UseXDG:        true,
		UseCurrentDir: true,
	}
}

// DiscoverDefaultsFile returns the first defaults file found, or "" if none.
// An explicit path from the environment is returned even when it does not
// exist so that loading it reports the error.
func DiscoverDefaultsFile(opts DiscoveryOptions) string {
	if opts.EnvVar != "" {
		if path := os.Getenv(opts.EnvVar); path != "" {
			return path
		}
	}

	var candidates []string
	for _, dir := range opts.Paths {
		candidates = append(candidates, withExtensions(filepath.Join(dir, opts.Name), opts.Extensions)...)
	}

	if opts.UseCurrentDir {
		if cwd, err := os.Getwd(); err == nil {
			base := filepath.Join(cwd, opts.AppName+"-"+opts.Name)
			candidates = append(candidates, withExtensions(base, opts.Extensions)...)
		}
	}

	if opts.UseXDG {
		for _, dir := range getXDGConfigPaths(opts.AppName) {
			candidates = append(candidates, withExtensions(filepath.Join(dir, opts.Name), opts.Extensions)...)
		}
	}

	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

func withExtensions(base string, exts []string) []string {
	paths := make([]string, len(exts))
	for i, ext := range exts {
		paths[i] = base + ext
	}
	return paths
}

// getXDGConfigPaths returns XDG-compliant config search paths
func getXDGConfigPaths(appName string) []string {
	var paths []string

	// XDG_CONFIG_HOME
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		paths = append(paths, filepath.Join(xdgHome, appName))
	} else if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", appName))
	}

	// XDG_CONFIG_DIRS
	if xdgDirs := os.Getenv("XDG_CONFIG_DIRS"); xdgDirs != "" {
		for _, dir := range filepath.SplitList(xdgDirs) {
			paths = append(paths, filepath.Join(dir, appName))
		}
	} else {
		paths = append(paths,
			filepath.Join("/etc/xdg", appName),
			filepath.Join("/etc", appName),
		)
	}

	return paths
}
