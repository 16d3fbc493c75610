// Package config loads and validates sdkgen configuration.
//
// This package manages:
//   - Built-in defaults for every command
//   - An optional sdkgen.yaml overlay
//   - SDKGEN_* environment overrides
//   - Validation of required fields
//
// Crosspoint tables given in YAML are merged over the built-in ones, so a
// file only needs the entries it changes.
//
// Usage:
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Generate.Holder)
package config
