// Package config loads, normalizes, and validates ved configuration.
//
// Configuration is read from the first file found among an explicit
// --config path, ved.toml / ved.yaml / ved.yml / ved.json / ved.jsonc in
// the working directory, and ~/.config/ved/config.toml. The file format
// follows the extension: TOML through go-toml, YAML through yaml.v3 and
// JSON with comments through tidwall/jsonc.
//
// The development-environment variables DCTNR, INTDR, PSECS and DCKROPT
// override the corresponding file values, so the same invocations that
// drove the old Makefile keep working.
package config
