// Package config handles configuration loading for atrium-gateway.
//
// # Overview
//
// Configuration is loaded from a YAML file with environment variable
// expansion. When no config file exists, everything is read directly
// from the process environment, the deployment mode the gateway
// actually ships in. Either way, configuration is read once per
// process start; changing the superadmin allow-list requires a
// restart.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from ATRIUM_CONFIG environment variable
//  2. ./gateway.yaml (current directory)
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	upstream:
//	  superadmin_token: "${SUPERADMIN_API_TOKEN}"
//
// # Environment Fallback
//
// Without a config file, these variables apply:
//
//	ATRIUM_HTTP_ADDR      listen address (default 0.0.0.0:8085)
//	ADMIN_API_URL         upstream Admin API base URL
//	SUPERADMIN_API_TOKEN  platform service bearer credential
//	SUPERADMIN_EMAILS     comma-separated superadmin allow-list
//	ATRIUM_AUDIT_DB       audit trail SQLite path (empty disables)
//
// # Configuration Sections
//
//	server:
//	  http_addr: "0.0.0.0:8085"
//	  enable_cors: true
//
//	upstream:
//	  base_url: "${ADMIN_API_URL}"
//	  superadmin_token: "${SUPERADMIN_API_TOKEN}"
//	  superadmin_emails: "${SUPERADMIN_EMAILS}"
//	  identity_timeout: "10s"
//	  forward_timeout: "10s"
//
//	database:
//	  path: "/var/lib/atrium/decisions.db"
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
//	metrics:
//	  enabled: true
//	  path: "/metrics"
//
// # Validation
//
// The upstream base URL is intentionally NOT validated at load time.
// Its absence degrades to a 500 on every request so the process stays
// up and observable rather than crash-looping.
package config
