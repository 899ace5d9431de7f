// Package config loads and validates collector configuration from YAML.
//
// Config files support ${VAR} environment variable substitution, which is
// how API keys and database credentials are injected in deployment.
package config
