// Package config loads the filedrop configuration from defaults, YAML
// config files, FILEDROP_ environment variables, and CLI flags, in
// rising order of precedence, then validates the result.
package config
