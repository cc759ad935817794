// Package paths resolves where tracelog keeps its configuration.
//
// The package wraps github.com/adrg/xdg for XDG Base Directory compliance.
// The configuration directory is <XDG_CONFIG_HOME>/tracelog unless
// TRACELOG_CONFIG_DIR points elsewhere:
//
//	paths.ConfigDir()         // ~/.config/tracelog
//	paths.DefaultConfigFile() // ~/.config/tracelog/config.yaml
//	paths.FindConfigFile()    // first of config.{yaml,yml,toml,json}, or ""
package paths
