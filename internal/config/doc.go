// Package config manages user-level settings stored at ~/.mifan/config.yaml.
// Settings can be overridden per invocation with MIFAN_* environment
// variables, for example MIFAN_CONCURRENCY=2.
package config
