/*
Package application holds the ambient pieces shared by every signing
client executable.

Config

This module implements the configuration abstraction used by the
executables. Configurations are stored as TOML files and loaded through a
ConfigLoader selected by encoding name.

Logger

This module implements a generic logging system, a thin wrapper around a
zap SugaredLogger configured for development or production use.
*/
package application
