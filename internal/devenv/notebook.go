package devenv

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FindNotebooks returns every *.ipynb below root, relative paths joined
// onto root, skipping Jupyter checkpoint copies.
func FindNotebooks(root string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(root), "**/*.ipynb", doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("search notebooks in %s: %w", root, err)
	}
	var out []string
	for _, m := range matches {
		if strings.Contains(path.Dir(m), ".ipynb_checkpoints") {
			continue
		}
		out = append(out, filepath.Join(root, filepath.FromSlash(m)))
	}
	return out, nil
}

// ClearNotebook strips outputs and execution counts from the code cells
// of the notebook at p. It reports whether the file changed and only
// rewrites it when write is true.
func ClearNotebook(p string, write bool) (bool, error) {
	info, err := os.Stat(p)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return false, err
	}
	cleared, err := ClearNotebookBytes(data)
	if err != nil {
		return false, fmt.Errorf("%s: %w", p, err)
	}
	if bytes.Equal(cleared, data) {
		return false, nil
	}
	if write {
		if err := os.WriteFile(p, cleared, info.Mode().Perm()); err != nil {
			return false, err
		}
	}
	return true, nil
}

// ClearNotebookBytes returns the notebook document with every code cell's
// outputs emptied and execution_count nulled. Output uses one-space
// indentation and sorted keys, the layout nbformat writes, so a notebook
// saved by Jupyter and then cleared produces a minimal diff.
func ClearNotebookBytes(data []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode notebook: %w", err)
	}

	cells, _ := doc["cells"].([]any)
	for _, c := range cells {
		cell, ok := c.(map[string]any)
		if !ok || cell["cell_type"] != "code" {
			continue
		}
		cell["outputs"] = []any{}
		cell["execution_count"] = nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", " ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode notebook: %w", err)
	}
	return buf.Bytes(), nil
}

// walkable reports whether root exists and is a directory.
func walkable(root string) (bool, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if !info.IsDir() {
		return false, &fs.PathError{Op: "search", Path: root, Err: fs.ErrInvalid}
	}
	return true, nil
}
