package cuvid

import (
	"os"
	"path/filepath"
	"strings"
)

// cudaLibraryPaths returns candidate locations for libcuda, highest priority
// first. An explicit override wins; otherwise CUDA_PATH and the standard
// loader locations are searched.
func cudaLibraryPaths(override string) []string {
	return libraryPaths(override, "libcuda.so.1", "libcuda.so")
}

// cuvidLibraryPaths returns candidate locations for libnvcuvid.
func cuvidLibraryPaths(override string) []string {
	return libraryPaths(override, "libnvcuvid.so.1", "libnvcuvid.so")
}

// CUDALibraryCandidates exposes the libcuda search order for status output.
func CUDALibraryCandidates(override string) []string {
	return cudaLibraryPaths(override)
}

// CUVIDLibraryCandidates exposes the libnvcuvid search order for status
// output.
func CUVIDLibraryCandidates(override string) []string {
	return cuvidLibraryPaths(override)
}

func libraryPaths(override string, names ...string) []string {
	var paths []string
	if trimmed := strings.TrimSpace(override); trimmed != "" {
		return []string{trimmed}
	}

	if cudaPath := os.Getenv("CUDA_PATH"); cudaPath != "" {
		for _, name := range names {
			paths = append(paths,
				filepath.Join(cudaPath, "lib64", name),
				filepath.Join(cudaPath, "lib", name),
			)
		}
	}

	// Bare names last so the system loader search path applies.
	for _, dir := range []string{
		"/usr/lib/x86_64-linux-gnu",
		"/usr/lib64",
		"/usr/lib",
	} {
		for _, name := range names {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	paths = append(paths, names...)
	return paths
}
