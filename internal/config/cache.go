package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/m-mizutani/goerr/v2"
)

const CacheFile = ".reactlab_cache.yaml"

// Cache remembers what was last typed into the setup form.
type Cache struct {
	Participant Participant `koanf:"participant"`
	Variant     string      `koanf:"variant"`
	Practice    bool        `koanf:"practice"`
	Fullscreen  bool        `koanf:"fullscreen"`
}

func (c *Config) Cache() Cache {
	return Cache{
		Participant: c.Participant,
		Variant:     c.Variant,
		Practice:    c.Practice,
		Fullscreen:  c.Display.Fullscreen,
	}
}

// ApplyCache copies cached form values onto the config.
func (c *Config) ApplyCache(cache Cache) {
	c.Participant = cache.Participant
	if cache.Variant != "" {
		c.Variant = cache.Variant
	}
	c.Practice = cache.Practice
	c.Display.Fullscreen = cache.Fullscreen
}

func SaveCache(path string, cache Cache) error {
	k := koanf.New(".")
	for key, val := range map[string]any{
		"participant.id":     cache.Participant.ID,
		"participant.trial":  cache.Participant.Trial,
		"participant.gender": cache.Participant.Gender,
		"participant.age":    cache.Participant.Age,
		"participant.group":  cache.Participant.Group,
		"variant":            cache.Variant,
		"practice":           cache.Practice,
		"fullscreen":         cache.Fullscreen,
	} {
		if err := k.Set(key, val); err != nil {
			return goerr.Wrap(err, "set cache value", goerr.V("key", key))
		}
	}

	data, err := k.Marshal(yaml.Parser())
	if err != nil {
		return goerr.Wrap(err, "encode cache")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return goerr.Wrap(err, "write cache", goerr.V("path", path))
	}
	return nil
}

// LoadCache returns an empty cache when the file does not exist yet.
func LoadCache(path string) (Cache, error) {
	var cache Cache
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return cache, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return cache, goerr.Wrap(err, "read cache", goerr.V("path", path))
	}
	if err := k.UnmarshalWithConf("", &cache, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return cache, goerr.Wrap(err, "decode cache", goerr.V("path", path))
	}
	return cache, nil
}
