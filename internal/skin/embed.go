package skin

import (
	"embed"
	"io/fs"
	"sort"

	"github.com/pelletier/go-toml/v2"
)

//go:embed resources
var embedded embed.FS

// DefaultSkinName is the skin used when nothing else resolves.
const DefaultSkinName = "default"

// LegacySkinName is the plain ANSI skin.
const LegacySkinName = "legacy"

// NamespacedFS scopes fsys to the ns directory.
func NamespacedFS(fsys fs.FS, ns string) (fs.FS, error) {
	return fs.Sub(fsys, ns)
}

// Resources returns the embedded skin store, one directory per skin.
func Resources() fs.FS {
	sub, err := NamespacedFS(embedded, "resources")
	if err != nil {
		panic(err)
	}
	return sub
}

// GetEmbedded returns a bundled skin by name.
func GetEmbedded(name string) (*Skin, bool) {
	data, err := fs.ReadFile(Resources(), name+"/skin.toml")
	if err != nil {
		return nil, false
	}

	s := &Skin{}
	if name != DefaultSkinName {
		if base, ok := embeddedDefault(); ok {
			*s = *base
		}
	}
	if err := toml.Unmarshal(data, s); err != nil {
		return nil, false
	}
	s.Name = name
	s.Embedded = true
	return s, true
}

// ListEmbedded returns the names of the bundled skins, sorted.
func ListEmbedded() []string {
	entries, err := fs.ReadDir(Resources(), ".")
	if err != nil {
		return []string{DefaultSkinName, LegacySkinName}
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := fs.Stat(Resources(), entry.Name()+"/skin.toml"); err == nil {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names
}

// Default returns the embedded default skin.
func Default() *Skin {
	s, ok := GetEmbedded(DefaultSkinName)
	if !ok {
		panic("skin: embedded default skin missing")
	}
	return s
}

// Legacy returns the embedded legacy skin.
func Legacy() *Skin {
	s, ok := GetEmbedded(LegacySkinName)
	if !ok {
		return Default()
	}
	return s
}

func embeddedDefault() (*Skin, bool) {
	return GetEmbedded(DefaultSkinName)
}
