package robot

import (
	"embed"
	"path"
	"sort"
	"strings"

	"github.com/adammck/locomotion"
)

//go:embed models/*.yaml
var models embed.FS

// Catalog returns the names of the built-in robots.
func Catalog() []string {
	entries, err := models.ReadDir("models")
	if err != nil {
		panic(err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}

	sort.Strings(names)
	return names
}

// LoadModel builds a fresh instance of the named built-in robot.
func LoadModel(name string) (*Model, error) {
	data, err := models.ReadFile(path.Join("models", name+".yaml"))
	if err != nil {
		return nil, locomotion.ConfigurationErrorf("unknown robot: %q (have: %s)", name, strings.Join(Catalog(), ", "))
	}

	return LoadDescription(data)
}
