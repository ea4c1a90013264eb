package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/storefront/dbquery/query"
	"github.com/storefront/dbquery/schema"
)

// CollectionConfig declares a collection beyond the built-in ones.
type CollectionConfig struct {
	Name    string                   `yaml:"name"`
	Table   string                   `yaml:"table"`
	Alias   string                   `yaml:"alias"`
	PerPage int                      `yaml:"perPage"`
	OrderBy string                   `yaml:"orderBy"`
	Order   string                   `yaml:"order"`
	Columns []map[string]interface{} `yaml:"columns"`
}

type Config struct {
	Storage     map[string]interface{} `yaml:"storage"`
	Cache       map[string]interface{} `yaml:"cache"`
	Collections []CollectionConfig     `yaml:"collections"`
}

// Default is used when there's no configuration file: everything lives in memory.
func Default() *Config {
	return &Config{
		Storage: map[string]interface{}{"driver": "memory"},
		Cache:   map[string]interface{}{"backend": "memory"},
	}
}

// DefaultPath is ~/.dbquery/config.yml.
func DefaultPath() (string, error) {
	dir, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "couldn't get user home directory")
	}
	return filepath.Join(dir, ".dbquery", "config.yml"), nil
}

func ReadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't open file")
	}
	defer f.Close()

	var config Config

	err = yaml.NewDecoder(f).Decode(&config)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't decode yaml configuration")
	}

	if config.Storage == nil {
		config.Storage = Default().Storage
	}
	if config.Cache == nil {
		config.Cache = Default().Cache
	}
	cleanupMaps(config.Storage)
	cleanupMaps(config.Cache)
	for i := range config.Collections {
		for j := range config.Collections[i].Columns {
			cleanupMaps(config.Collections[i].Columns[j])
		}
	}

	return &config, nil
}

// ReadConfigOrDefault is ReadConfig, falling back to Default if the file doesn't exist.
func ReadConfigOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return ReadConfig(path)
}

// GetCollectionConfig returns the declared collection with the given name.
func (config *Config) GetCollectionConfig(name string) (*CollectionConfig, error) {
	for i := range config.Collections {
		if config.Collections[i].Name == name {
			return &config.Collections[i], nil
		}
	}

	return nil, ErrNotFound
}

// BuildTable builds the collection's table, failing on malformed columns.
func (cc *CollectionConfig) BuildTable() (*schema.Table, error) {
	tableName := cc.Table
	if tableName == "" {
		tableName = cc.Name
	}
	columns := make([]*schema.Column, len(cc.Columns))
	for i := range cc.Columns {
		column, err := schema.ParseColumn(cc.Columns[i])
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't parse column %d of collection %s", i, cc.Name)
		}
		columns[i] = column
	}

	table, err := schema.NewTable(tableName, cc.Alias, columns...)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't build table of collection %s", cc.Name)
	}
	return table, nil
}

func (cc *CollectionConfig) Direction() query.Direction {
	return query.ParseDirection(cc.Order)
}

// The yaml decoder may create maps of type map[interface{}]interface{}.
// cleanupMaps will change them to map[string]interface{}.
func cleanupMaps(config map[string]interface{}) {
	for k, v := range config {
		config[k] = cleanupMapsRecursive(v)
	}
}

func cleanupMapsRecursive(config interface{}) interface{} {
	switch config := config.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{})
		for k, v := range config {
			out[fmt.Sprintf("%v", k)] = cleanupMapsRecursive(v)
		}
		return out
	case map[string]interface{}:
		cleanupMaps(config)
	case []interface{}:
		for i := range config {
			config[i] = cleanupMapsRecursive(config[i])
		}
	}

	return config
}
