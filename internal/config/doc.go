// Package config loads iqama's configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/iqama/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. IQAMA_* environment variables override file values
//
// LoadEnvFile reads an optional .env file into the environment first, so the
// remote key can live outside the TOML file.
//
// # Default Values
//
//   - Config file: ~/.config/iqama/config.toml
//   - Data directory: ~/.local/share/iqama
//   - Log file: <data_dir>/iqama.log
//   - Remote table: prayer_times, record id: masjid-prayer-times
//   - Debounce: 400ms, retry tick: 5s
//   - Serve address: :8787
//
// # TOML Format
//
//	data_dir = "~/.local/share/iqama"
//
//	[remote]
//	url = "https://xyz.supabase.co"
//	api_key = "anon-key"
//	table = "prayer_times"
//	record_id = "masjid-prayer-times"
//
//	[sync]
//	debounce_ms = 400
//	retry_seconds = 5
//
//	[storage]
//	local = true
//	cookie = true
//	structured = true
//
//	[serve]
//	addr = ":8787"
//	api_key = ""
//	redis_addr = ""
//
// Remote sync is disabled when url or api_key is empty. That is a normal
// operating mode, not an error.
//
// # Error Handling
//
// Load returns errors for path expansion failures, unreadable files and TOML
// parse errors. A missing file is not an error.
package config
