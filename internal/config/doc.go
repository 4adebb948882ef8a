// Package config loads dictcc-mcp settings with viper.
//
// Sources, lowest precedence first: built-in defaults, a YAML file
// (--config, else ./dictcc.yaml, else ~/.config/dictcc/config.yaml),
// DICTCC_* environment variables (DICTCC_SEARCH_MAX_RESULTS for
// search.max_results) and bound command line flags.
//
//	source_dir: ~/Downloads
//	data_dir: ~/.local/share/dictcc-mcp
//	search:
//	  max_results: 200
//	watch:
//	  debounce: 2s
package config
