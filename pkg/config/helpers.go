package config

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/errors"
)

// EnvironmentKeyPrefix addresses single script environment variables, e.g. "environment.CC".
const EnvironmentKeyPrefix = "environment."

// SetValue sets a configuration value by key. Supported keys are the yaml names of the
// settings plus environment.<NAME>. An empty value removes an environment entry.
func (c *Config) SetValue(key, value string) error {
	if name, ok := strings.CutPrefix(key, EnvironmentKeyPrefix); ok && name != "" {
		if value == "" {
			delete(c.Settings.Environment, name)
			return nil
		}
		if c.Settings.Environment == nil {
			c.Settings.Environment = make(map[string]string)
		}
		c.Settings.Environment[name] = value
		return nil
	}

	// Work on a copy so a rejected value leaves the configuration untouched.
	s := c.Settings
	switch key {
	case "root_dir":
		s.RootDir = value
	case "state_dir":
		s.StateDir = value
	case "cache_dir":
		s.CacheDir = value
	case "arch":
		s.Arch = value
	case "abi":
		s.ABI = value
	case "http_timeout", "index_ttl":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %s", key, value)
		}
		if key == "http_timeout" {
			s.HTTPTimeout = Duration(d)
		} else {
			s.IndexTTL = Duration(d)
		}
	case "max_concurrent_syncs":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %s", key, value)
		}
		s.MaxConcurrent = n
	case "output_format":
		s.OutputFormat = value
	case "log_level":
		s.LogLevel = value
	default:
		return fmt.Errorf("%w: %s", errors.ErrUnknownConfigKey, key)
	}
	if err := validateSettings(s); err != nil {
		return err
	}
	c.Settings = s
	return nil
}

// GetValue returns the value of a configuration key as a string.
func (c *Config) GetValue(key string) (string, error) {
	if name, ok := strings.CutPrefix(key, EnvironmentKeyPrefix); ok && name != "" {
		return c.Settings.Environment[name], nil
	}
	value, ok := c.ToMap()[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", errors.ErrUnknownConfigKey, key)
	}
	return value, nil
}

// ToMap flattens the settings into yaml key / string value pairs for display.
// Environment entries appear as environment.<NAME>.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string)

	settingsValue := reflect.ValueOf(c.Settings)
	settingsType := settingsValue.Type()

	for i := 0; i < settingsValue.NumField(); i++ {
		field := settingsType.Field(i)
		yamlTag := field.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}

		// Handle yaml tags with options (e.g., "cache_dir,omitempty")
		yamlKey := strings.Split(yamlTag, ",")[0]
		fieldValue := settingsValue.Field(i)

		if s, ok := fieldValue.Interface().(fmt.Stringer); ok {
			result[yamlKey] = s.String()
			continue
		}

		switch fieldValue.Kind() {
		case reflect.Bool:
			result[yamlKey] = strconv.FormatBool(fieldValue.Bool())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			result[yamlKey] = strconv.FormatInt(fieldValue.Int(), 10)
		case reflect.String:
			result[yamlKey] = fieldValue.String()
		case reflect.Map:
			iter := fieldValue.MapRange()
			for iter.Next() {
				result[yamlKey+"."+fmt.Sprint(iter.Key().Interface())] = fmt.Sprint(iter.Value().Interface())
			}
		default:
			result[yamlKey] = fmt.Sprintf("%v", fieldValue.Interface())
		}
	}

	return result
}

// Keys returns the keys of ToMap in sorted order.
func (c *Config) Keys() []string {
	m := c.ToMap()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
