// Package config loads the mapforge configuration.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Command Line Flags      │  ← Highest priority
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← MAPFORGE_SECTION_KEY
//	├─────────────────────────────┤
//	│  2. Config File             │  ← ~/.config/mapforge/config.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// The merged layers are decoded into a Config value and validated. A Manager
// can watch the file and reload on change; OnChange handlers receive the old
// and the new configuration.
//
// # Sub-packages
//
//   - loader: TOML file and environment variable loading
//   - layer: layer management and merging
//   - watcher: file watching for live reload
//
// # Basic Usage
//
//	m := config.New(config.WithFile(config.DefaultPath()))
//	if err := m.Load(ctx); err != nil {
//	    return err
//	}
//	cfg := m.Current()
package config
