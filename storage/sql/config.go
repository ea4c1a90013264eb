package sql

import (
	"github.com/pkg/errors"

	"github.com/storefront/dbquery/config"
)

// NewFromConfig opens a storage using the configuration: either a complete "dsn",
// or "address", "user", "password" and "databaseName".
func NewFromConfig(template Template, dbConfig map[string]interface{}) (*Storage, error) {
	dsn, err := config.GetString(dbConfig, "dsn", config.WithDefault(""))
	if err != nil {
		return nil, errors.Wrap(err, "couldn't get dsn")
	}
	if dsn == "" {
		host, port, err := config.GetIPAddress(dbConfig, "address", config.WithDefault([]interface{}{"localhost", template.DefaultPort()}))
		if err != nil {
			return nil, errors.Wrap(err, "couldn't get address")
		}
		user, err := config.GetString(dbConfig, "user", config.WithDefault(""))
		if err != nil {
			return nil, errors.Wrap(err, "couldn't get user")
		}
		password, err := config.GetString(dbConfig, "password", config.WithDefault(""))
		if err != nil {
			return nil, errors.Wrap(err, "couldn't get password")
		}
		databaseName, err := config.GetString(dbConfig, "databaseName")
		if err != nil {
			return nil, errors.Wrap(err, "couldn't get database name")
		}
		dsn = template.DSN(user, password, host, databaseName, port)
	}

	batchSize, err := config.GetInt(dbConfig, "batchSize", config.WithDefault(DefaultBatchSize))
	if err != nil {
		return nil, errors.Wrap(err, "couldn't get batch size")
	}
	maxOpenConns, err := config.GetInt(dbConfig, "maxOpenConns", config.WithDefault(0))
	if err != nil {
		return nil, errors.Wrap(err, "couldn't get max open connections")
	}

	s, err := Open(template, dsn, WithBatchSize(batchSize))
	if err != nil {
		return nil, err
	}
	if maxOpenConns > 0 {
		s.DB().SetMaxOpenConns(maxOpenConns)
	}
	return s, nil
}
