// Package config loads rstate.json, the configuration file of the rstate
// command.
//
// # File Format
//
//	{
//	  "scheduler": {"tickInterval": "16ms", "taskBuffer": 64},
//	  "inspect":   {"host": "localhost", "port": 7070},
//	  "metrics":   {"enabled": true, "namespace": "rstate"},
//	  "tracing":   {"enabled": false, "tracerName": "rstate"},
//	  "log":       {"level": "info", "format": "text"}
//	}
//
// Every field is optional. Missing fields take the values from New.
//
// # Usage
//
//	cfg, err := config.LoadFile("rstate.json")
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	tick, _ := cfg.TickDuration()
package config
