// Package config loads the server's typed configuration from defaults, an
// optional config.yaml and TASKER_-prefixed environment variables, and
// validates it before any component is constructed.
package config
