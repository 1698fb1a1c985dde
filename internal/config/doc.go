// Package config loads runtime configuration for the feedupload CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. JSON file selected via -c/-config, or ./api.json when present.
//  3. Environment variables with the FEEDUPLOAD_ prefix.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-d string     folder to scan for video files
//	-u string     base URL of the feed service
//	-k string     feed API key
//	-j string     journal database path ("" disables the journal)
//	-m string     address to serve /metrics on ("" disables)
//	-l string     log level (debug, info, warn, error)
//	-settle dur   delay between upload and finalize
//
// # JSON schema
//
//	{
//	  "api_key": "secret",
//	  "microfeed_url": "https://feed.example.com/",
//	  "folder": "/videos",
//	  "settle_delay": "5s"
//	}
//
// The API key and the feed URL are required; LoadConfig returns
// ErrMissingSetting when either is empty after all sources are applied.
package config
