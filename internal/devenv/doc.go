// Package devenv manages the per-project Jupyter development container.
//
// It replaces a Makefile that started a notebook container, scraped its
// log for the server address, remembered the container name in a flat
// state file and ran linters and tests inside it. The state file keeps
// its original format (one container name per line) so the two can be
// used side by side during a migration.
package devenv
