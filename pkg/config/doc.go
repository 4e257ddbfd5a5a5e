// Package config reads the share configuration file and the application settings.
//
// The share configuration is an INI file with one section per remote host:
//
//	[NAS]
//	ip = 192.168.1.10
//	username = bob
//	password = pw        # text after '#' is ignored
//	shares = docs, media
//	letters = J, K
//
// Values from the DEFAULT section are inherited by every other section.
// A section is mount-ready when ip, username, password and at least one share
// are set. Preferred letters are optional and index-aligned with shares.
//
// # Logging Verbosity Convention
//
//   - V(0): Always visible - missing or unreadable config file
//   - V(2): Production default - load and reload outcomes, config edits
//   - V(4): Debug level - per-section readiness, watcher events
package config
