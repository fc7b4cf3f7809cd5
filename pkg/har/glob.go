package har

import (
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// ExpandPaths resolves HAR file arguments. Each argument is either a file
// path or a glob pattern; ** matches across directories. The result is
// sorted and free of duplicates. A pattern matching nothing is an error.
func ExpandPaths(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string

	for _, arg := range args {
		if _, err := os.Stat(arg); err == nil {
			if !seen[arg] {
				seen[arg] = true
				paths = append(paths, arg)
			}
			continue
		}

		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("expanding glob pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no HAR files match %q", arg)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// ParseFile reads and decodes the HAR file at path.
func ParseFile(path string) (*HAR, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading HAR file: %w", err)
	}
	return Parse(data)
}
