package services

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
)

// IsPDF reports whether the file name has a .pdf extension, in any case.
func IsPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// ListPDFs returns the PDF files directly inside dir, sorted by name.
func ListPDFs(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() && IsPDF(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no PDF files in %s", domain.ErrNotFound, dir)
	}
	sort.Strings(paths)
	return paths, nil
}

// SampleFiles picks n distinct paths at random. When n is not positive or
// covers every path, all paths are returned in their original order.
func SampleFiles(paths []string, n int, rng *rand.Rand) []string {
	if n <= 0 || n >= len(paths) {
		return append([]string(nil), paths...)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	out := make([]string, 0, n)
	for _, i := range rng.Perm(len(paths))[:n] {
		out = append(out, paths[i])
	}
	return out
}
