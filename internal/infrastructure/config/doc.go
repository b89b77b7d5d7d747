// Package config handles loading and validating occupancy monitor configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//   - Non-fatal configuration warnings (timer consistency checks)
//
// Security Considerations:
//   - Sensitive values (broker credentials, InfluxDB tokens) should be set
//     via environment variables rather than committed to the config file
//   - The config file should have restricted permissions (0600)
//
// Performance Characteristics:
//   - Configuration is loaded once at startup
//   - No runtime overhead after initial load
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, w := range cfg.Warnings() {
//	    log.Warn(w)
//	}
package config
