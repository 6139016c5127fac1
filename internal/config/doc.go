// Package config provides configuration parsing for MicroES projects.
//
// The configuration is stored in microes.json at the project root. A missing
// file yields defaults; every field is optional.
//
// # Configuration File Structure
//
//	{
//	  "name": "my-game",
//	  "preview": {
//	    "port": 7878,
//	    "portAttempts": 10,
//	    "openBrowser": true
//	  },
//	  "build": {
//	    "command": "npm",
//	    "args": ["run", "build"]
//	  },
//	  "watch": {
//	    "paths": ["src", "assets"],
//	    "ignore": ["*.psd"],
//	    "debounceMs": 100
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(projectDir)
//	if err != nil {
//	    return err
//	}
//	fmt.Println("Port:", cfg.Preview.Port)
package config
