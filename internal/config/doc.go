// Package config provides configuration parsing for the vstore CLI.
//
// The configuration is stored in vstore.json (or vstore.yaml / vstore.yml)
// in the working directory. Every field is optional; missing fields take
// the defaults of New.
//
// # Configuration File Structure
//
//	{
//	  "log": {
//	    "level": "debug",
//	    "format": "json"
//	  },
//	  "serve": {
//	    "addr": ":8080",
//	    "initialState": "state.json",
//	    "metricsPath": "/metrics",
//	    "storeName": "state"
//	  },
//	  "bench": {
//	    "iterations": 1000,
//	    "subscribers": 1,
//	    "selectors": 1
//	  },
//	  "demo": {
//	    "initialName": "Saiya"
//	  }
//	}
//
// The same structure in YAML:
//
//	log:
//	  level: debug
//	serve:
//	  addr: ":9090"
//
// # Usage
//
//	cfg, err := config.LoadOrDefault(".")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Serve.Addr)
package config
