// Package config handles loading and validating Fieldtask Core configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields per store backend
//   - Default value handling
//
// Security Considerations:
//   - Credentials (MQTT password, InfluxDB token, database DSN) should be set
//     via environment variables rather than committed config files
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Service.Name)
package config
