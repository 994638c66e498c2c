package config

import (
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/index"
)

// RepositoryConfig represents a single repository configuration. URL may also be a local
// directory or descriptor path.
type RepositoryConfig struct {
	Name    string `yaml:"name" toml:"name"`
	URL     string `yaml:"url" toml:"url"`
	Enabled *bool  `yaml:"enabled,omitempty" toml:"enabled,omitempty"`
}

// IsEnabled reports whether the repository takes part in syncs. Repositories are enabled
// unless the configuration says otherwise.
func (rc *RepositoryConfig) IsEnabled() bool {
	return rc.Enabled == nil || *rc.Enabled
}

// ToRepository converts the configuration entry into an index repository.
func (rc *RepositoryConfig) ToRepository() *index.Repository {
	return &index.Repository{
		Name:     rc.Name,
		Location: rc.URL,
		Enabled:  rc.IsEnabled(),
	}
}

// IndexRepositories returns the configured repositories in declaration order.
func (c *Config) IndexRepositories() []*index.Repository {
	out := make([]*index.Repository, 0, len(c.Repositories))
	for _, rc := range c.Repositories {
		out = append(out, rc.ToRepository())
	}
	return out
}
