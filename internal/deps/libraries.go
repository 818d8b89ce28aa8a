package deps

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CheckLibrary reports the first shared library found among the candidate
// paths. Bare sonames are resolved by the dynamic loader at open time, not
// statable here, so they are skipped; when nothing else matches the first
// soname is recorded so the report names what the loader would be asked for.
func CheckLibrary(name, description string, candidates []string) Status {
	result := Status{
		Name:        name,
		Description: strings.TrimSpace(description),
	}
	soname := ""
	for _, candidate := range candidates {
		if !strings.ContainsRune(candidate, filepath.Separator) {
			if soname == "" {
				soname = candidate
			}
			continue
		}
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			result.Command = candidate
			result.Available = true
			return result
		}
	}
	result.Command = soname
	result.Available = false
	result.Detail = fmt.Sprintf("library %q not found", name)
	return result
}
