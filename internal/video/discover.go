package video

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/shinji-kodama/ved/internal/model"
)

// FindVideos returns every video below dir, grouped by extension in
// Formats order and sorted within each group. Extensions match in any
// case, as they do in IsVideo.
func FindVideos(dir string) ([]string, error) {
	return findVideos(dir, "")
}

// FindVideosExcept is FindVideos without files that already have ext.
func FindVideosExcept(dir, ext string) ([]string, error) {
	return findVideos(dir, strings.ToLower(strings.TrimPrefix(ext, ".")))
}

func findVideos(dir, skipExt string) ([]string, error) {
	fsys := os.DirFS(dir)
	var out []string
	for _, f := range Formats {
		if f.Ext == skipExt {
			continue
		}
		matches, err := doublestar.Glob(fsys, "**/*."+f.Ext, doublestar.WithFilesOnly(), doublestar.WithCaseInsensitive())
		if err != nil {
			return nil, fmt.Errorf("search %s for *.%s: %w", dir, f.Ext, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			out = append(out, filepath.Join(dir, filepath.FromSlash(m)))
		}
	}
	return out, nil
}

// Resolve expands a VIDEO_PATH argument: a file yields itself after an
// extension check, a directory yields FindVideos. Missing paths are usage
// errors.
func Resolve(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, model.UsageError("path %q does not exist", path)
		}
		return nil, err
	}
	if !info.IsDir() {
		if err := ValidateExtension(path); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}
	return FindVideos(path)
}

// SampleOptions controls Sample.
type SampleOptions struct {
	// Seed makes the draw reproducible. Zero means a random seed.
	Seed uint64
	// Max is the number of items to draw. Negative means a random count
	// in [0, len(paths)]. Values above len(paths) are clamped.
	Max int
}

// Sample draws up to opts.Max distinct paths in random order.
func Sample(paths []string, opts SampleOptions) []string {
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	k := opts.Max
	if k < 0 {
		k = r.IntN(len(paths) + 1)
	}
	if k > len(paths) {
		k = len(paths)
	}
	perm := r.Perm(len(paths))
	out := make([]string, k)
	for i := range k {
		out[i] = paths[perm[i]]
	}
	return out
}
