// Package config loads jig configuration.
//
// LoadConfig resolves a YAML config file and an optional dotenv file for a
// service, then decodes them with Viper into a caller-supplied struct. Values
// already present in the struct act as defaults. Environment variables
// override file values using the JIG_ prefix and underscore-separated key
// paths:
//
//	JIG_PARTICIPANT_PORT=8080
//	JIG_LOGGING_LEVEL=debug
//
// ServiceConfig carries the settings shared by every command and is meant to
// be embedded with mapstructure:",squash".
package config
