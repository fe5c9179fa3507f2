// Package config provides configuration parsing for vloop.
//
// The configuration is stored in vloop.json in the working directory. The
// CLI layers VLOOP_* environment variables and flags on top of it.
//
// # Configuration File Structure
//
//	{
//	  "scheduler": {
//	    "flushLimit": 100
//	  },
//	  "log": {
//	    "level": "debug",
//	    "file": "vloop.log"
//	  },
//	  "serve": {
//	    "addr": "localhost:3000",
//	    "metricsPath": "/metrics",
//	    "tick": "500ms"
//	  },
//	  "demo": {
//	    "items": 5,
//	    "steps": 4
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
