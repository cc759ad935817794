// Package config loads the global defaults of the tracelog CLI.
//
// Values come, in order of precedence, from command-line flags bound by the
// caller, TRACELOG_* environment variables, a config file, and built-in
// defaults. Without an explicit path the file is ./tracelog.{yaml,yml,toml,json}
// or <XDG_CONFIG_HOME>/tracelog/config.{yaml,yml,toml,json}:
//
//	library: myservice
//	level: DEBUG    # FATAL, ERROR, WARN, INFO, DEBUG or TRACE
//	format: json    # text or json
//	color: auto     # auto, always or never
//
// Typical use:
//
//	config.Init()
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	config.Apply(cfg, tracelog.Global())
package config
