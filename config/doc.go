// Package config provides layered configuration resolution for the discuss
// CLI.
//
// Values are merged with clear precedence:
//  1. Command-line flags (highest priority)
//  2. Environment variables (e.g., HYLABLE_COURSE_ID)
//  3. A .env file in the working directory
//  4. The selected profile in ~/.config/hylable/config.yaml
//  5. Shared top-level keys in the same file
//  6. Built-in defaults (lowest priority)
//
// # Config File
//
// Profiles let one file hold several accounts or courses:
//
//	url: https://api.hylable.com
//	profiles:
//	  default:
//	    course_id: crs_123
//	    token: ...
//	  lab:
//	    course_id: crs_456
//	    auth_type: client_credentials
//	    client_id: ...
//
// # Basic Usage
//
//	resolver := config.ForProfile("lab", "")
//	resolved := resolver.ResolveWithFlags(map[string]string{"course_id": flagCourse})
//	cfg, err := config.HylableConfig(resolved)
//
// # Config Sources
//
// Each resolved value tracks where it came from:
//   - "default": Built-in default value
//   - "global": ~/.config/hylable/config.yaml
//   - "dotenv": .env file
//   - "env": Environment variable
//   - "flag": Command-line flag
package config
