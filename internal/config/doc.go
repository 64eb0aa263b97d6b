// Package config loads difficulty presets and environment settings.
//
// Presets are CUE. The built-in file defines the #Preset schema and the
// beginner, intermediate, and expert boards; user files passed to
// LoadPresets are unified with it and may add presets or narrow existing
// ones. Validation errors carry CUE source positions.
//
// Settings come from the environment, optionally seeded from a .env file.
// Command-line flags override both.
package config
