package config

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("field not found")

type Option func(options *options)

type options struct {
	withDefault  bool
	defaultValue interface{}
}

func getOptions(opts ...Option) *options {
	defaultOptions := &options{
		withDefault:  false,
		defaultValue: nil,
	}

	for _, opt := range opts {
		opt(defaultOptions)
	}

	return defaultOptions
}

func WithDefault(value interface{}) Option {
	return func(options *options) {
		options.withDefault = true
		options.defaultValue = value
	}
}

// GetInterface gets the given potentially nested field irrespective of its type.
// Dots descend into submaps.
func GetInterface(config map[string]interface{}, field string, opts ...Option) (interface{}, error) {
	options := getOptions(opts...)
	i := strings.Index(field, ".")
	if i == -1 {
		element, ok := config[field]
		if options.withDefault && !ok {
			return options.defaultValue, nil
		}
		if !ok {
			return nil, ErrNotFound
		}
		return element, nil
	}

	element, ok := config[field[:i]]
	if options.withDefault && !ok {
		return options.defaultValue, nil
	}
	if !ok {
		return nil, ErrNotFound
	}
	submap, ok := element.(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("%v should be a map, got: %v", field[:i], reflect.TypeOf(element))
	}

	out, err := GetInterface(submap, field[i+1:], opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't get %v", field[i+1:])
	}

	return out, nil
}

// GetString gets a string from the given field.
func GetString(config map[string]interface{}, field string, opts ...Option) (string, error) {
	options := getOptions(opts...)
	out, err := GetInterface(config, field)
	if err != nil {
		if options.withDefault && errors.Cause(err) == ErrNotFound {
			return options.defaultValue.(string), nil
		}
		return "", errors.Wrapf(err, "couldn't get %s", field)
	}

	outString, ok := out.(string)
	if !ok {
		return "", errors.Errorf("expected string in %s, got %v", field, reflect.TypeOf(out))
	}

	return outString, nil
}

// GetInt gets an int from the given field.
func GetInt(config map[string]interface{}, field string, opts ...Option) (int, error) {
	options := getOptions(opts...)
	out, err := GetInterface(config, field)
	if err != nil {
		if options.withDefault && errors.Cause(err) == ErrNotFound {
			return options.defaultValue.(int), nil
		}
		return 0, errors.Wrapf(err, "couldn't get %s", field)
	}

	switch out := out.(type) {
	case int:
		return out, nil
	case int64:
		return int(out), nil
	default:
		return 0, errors.Errorf("expected int in %s, got %v", field, reflect.TypeOf(out))
	}
}

// GetDuration gets a duration written like "1h30m" from the given field.
func GetDuration(config map[string]interface{}, field string, opts ...Option) (time.Duration, error) {
	options := getOptions(opts...)
	out, err := GetString(config, field)
	if err != nil {
		if options.withDefault && errors.Cause(err) == ErrNotFound {
			return options.defaultValue.(time.Duration), nil
		}
		return 0, err
	}

	duration, err := time.ParseDuration(out)
	if err != nil {
		return 0, errors.Wrapf(err, "couldn't parse duration in %s", field)
	}

	return duration, nil
}

// GetIPAddress gets a host:port address from the given field.
// The default must be a []interface{}{host, port}.
func GetIPAddress(config map[string]interface{}, field string, opts ...Option) (string, int, error) {
	options := getOptions(opts...)
	value, err := GetString(config, field)
	if err != nil {
		if options.withDefault && errors.Cause(err) == ErrNotFound {
			defaults := options.defaultValue.([]interface{})
			return defaults[0].(string), defaults[1].(int), nil
		}
		return "", 0, errors.Wrapf(err, "couldn't get string")
	}

	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return "", 0, errors.New("expected address to be in host:port form")
	}

	port, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", 0, errors.Wrap(err, "couldn't parse port")
	}

	return parts[0], int(port), nil
}
