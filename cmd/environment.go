package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/storefront/dbquery/cache"
	cachememory "github.com/storefront/dbquery/cache/memory"
	"github.com/storefront/dbquery/cache/redis"
	"github.com/storefront/dbquery/cache/ristretto"
	"github.com/storefront/dbquery/collection"
	"github.com/storefront/dbquery/config"
	"github.com/storefront/dbquery/entities"
	"github.com/storefront/dbquery/storage"
	"github.com/storefront/dbquery/storage/memory"
	sqlstorage "github.com/storefront/dbquery/storage/sql"
	"github.com/storefront/dbquery/storage/sql/mysql"
	"github.com/storefront/dbquery/storage/sql/postgres"
	"github.com/storefront/dbquery/storage/sql/sqlite"
)

var storageCreators = map[string]func(dbConfig map[string]interface{}) (storage.Storage, error){
	"memory": func(dbConfig map[string]interface{}) (storage.Storage, error) {
		return memory.New(), nil
	},
	"sqlite": func(dbConfig map[string]interface{}) (storage.Storage, error) {
		return sqlstorage.NewFromConfig(sqlite.Template, dbConfig)
	},
	"postgres": func(dbConfig map[string]interface{}) (storage.Storage, error) {
		return sqlstorage.NewFromConfig(postgres.Template, dbConfig)
	},
	"mysql": func(dbConfig map[string]interface{}) (storage.Storage, error) {
		return sqlstorage.NewFromConfig(mysql.Template, dbConfig)
	},
}

type closeFunc func() error

var cacheCreators = map[string]func(cacheConfig map[string]interface{}) (cache.Backend, closeFunc, error){
	"none": func(cacheConfig map[string]interface{}) (cache.Backend, closeFunc, error) {
		return cache.Nop{}, nil, nil
	},
	"memory": func(cacheConfig map[string]interface{}) (cache.Backend, closeFunc, error) {
		return cachememory.New(), nil, nil
	},
	"ristretto": func(cacheConfig map[string]interface{}) (cache.Backend, closeFunc, error) {
		c, err := ristretto.NewFromConfig(cacheConfig)
		if err != nil {
			return nil, nil, err
		}
		return c, func() error { c.Close(); return nil }, nil
	},
	"redis": func(cacheConfig map[string]interface{}) (cache.Backend, closeFunc, error) {
		c, err := redis.NewFromConfig(cacheConfig)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	},
}

// environment is everything the commands run against, built from the configuration.
type environment struct {
	storage     storage.Storage
	cache       cache.Backend
	collections map[string]entities.Entry
	closers     []closeFunc
}

func newEnvironment(ctx context.Context, cfg *config.Config) (_ *environment, outErr error) {
	env := &environment{
		collections: make(map[string]entities.Entry),
	}
	defer func() {
		if outErr != nil {
			env.Close()
		}
	}()

	driver, err := config.GetString(cfg.Storage, "driver", config.WithDefault("memory"))
	if err != nil {
		return nil, fmt.Errorf("couldn't get storage driver: %w", err)
	}
	createStorage, ok := storageCreators[driver]
	if !ok {
		return nil, fmt.Errorf("unknown storage driver '%s'", driver)
	}
	env.storage, err = createStorage(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("couldn't open %s storage: %w", driver, err)
	}
	env.closers = append(env.closers, env.storage.Close)

	backend, err := config.GetString(cfg.Cache, "backend", config.WithDefault("memory"))
	if err != nil {
		return nil, fmt.Errorf("couldn't get cache backend: %w", err)
	}
	createCache, ok := cacheCreators[backend]
	if !ok {
		return nil, fmt.Errorf("unknown cache backend '%s'", backend)
	}
	var closeCache closeFunc
	env.cache, closeCache, err = createCache(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("couldn't create %s cache: %w", backend, err)
	}
	if closeCache != nil {
		env.closers = append(env.closers, closeCache)
	}

	for _, e := range entities.All() {
		env.collections[e.Name] = e
	}
	for i := range cfg.Collections {
		cc := &cfg.Collections[i]
		if _, ok := env.collections[cc.Name]; ok {
			return nil, fmt.Errorf("collection '%s' is already defined", cc.Name)
		}
		table, err := cc.BuildTable()
		if err != nil {
			return nil, fmt.Errorf("couldn't load collection '%s': %w", cc.Name, err)
		}
		env.collections[cc.Name] = entities.Entry{
			Name:    cc.Name,
			Table:   table,
			PerPage: cc.PerPage,
			OrderBy: cc.OrderBy,
			Order:   cc.Direction(),
		}
	}

	// Memory storage starts out empty on every run.
	if driver == "memory" {
		for _, name := range env.Names() {
			c, err := env.Collection(name)
			if err != nil {
				return nil, err
			}
			if err := c.Install(ctx); err != nil {
				return nil, err
			}
		}
	}

	return env, nil
}

func (env *environment) Collection(name string) (*collection.Collection[storage.Row], error) {
	e, ok := env.collections[name]
	if !ok {
		if e, ok = entities.Find(name); !ok {
			return nil, fmt.Errorf("unknown collection '%s', see 'dbquery describe'", name)
		}
	}
	return e.Rows(env.storage, collection.WithCache(env.cache)), nil
}

// Names lists the collections in alphabetical order.
func (env *environment) Names() []string {
	names := make([]string, 0, len(env.collections))
	for name := range env.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (env *environment) Close() error {
	var firstErr error
	for i := len(env.closers) - 1; i >= 0; i-- {
		if err := env.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	env.closers = nil
	return firstErr
}
