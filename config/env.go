package config

import "os"

// EnvInstallRoot and EnvDataRoot are the environment variables spec.md §6
// names for template discovery.
const (
	EnvInstallRoot = "DOM_INSTALL_ROOT"
	EnvDataRoot    = "DOM_DATA_ROOT"
)

// TemplateSearchPath returns the ordered list of directories to search for
// a world template, per spec.md §6: install root, then data root, then
// CWD. Overrides on WorldConfig take precedence over the environment.
func (c WorldConfig) TemplateSearchPath() []string {
	var path []string
	if c.InstallRoot != "" {
		path = append(path, c.InstallRoot)
	} else if v := os.Getenv(EnvInstallRoot); v != "" {
		path = append(path, v)
	}
	if c.DataRoot != "" {
		path = append(path, c.DataRoot)
	} else if v := os.Getenv(EnvDataRoot); v != "" {
		path = append(path, v)
	}
	if cwd, err := os.Getwd(); err == nil {
		path = append(path, cwd)
	}
	return path
}
