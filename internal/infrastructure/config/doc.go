// Package config handles loading and validating Nosteq Core configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with NOSTEQ_* environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - The SmartOLT API key and JWT secret should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
//	client := smartolt.New(cfg.SmartOLTBaseURL(), cfg.SmartOLT.APIKey)
package config
