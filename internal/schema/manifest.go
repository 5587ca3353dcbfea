package schema

// ProjectManifest is the project.yml written into every throwaway test project.
type ProjectManifest struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Repos        []string `yaml:"repo"`
	ModulePath   string   `yaml:"modulepath"`
	DownloadPath string   `yaml:"downloadpath"`
}

// ModuleManifest is the module.yml identifying a module.
type ModuleManifest struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	License string `yaml:"license,omitempty"`
}
