package manifest

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadRestrictFile reads a newline-separated list of file paths. Blank
// lines and lines starting with # are skipped; backslashes are normalized
// to forward slashes so Windows-produced lists match manifest paths.
func ReadRestrictFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading restrict file: %w", err)
	}
	defer f.Close()

	var paths []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, normalizePath(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading restrict file: %w", err)
	}
	return paths, nil
}

// RestrictTo filters the manifest's model nodes in place, keeping only
// models whose original_file_path or package-stripped patch_path appears
// in the given list. Sources and non-model nodes are untouched; column
// and table checks simply never see the removed models.
func (m *Manifest) RestrictTo(paths []string) {
	allowed := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		allowed[normalizePath(p)] = struct{}{}
	}

	for id, node := range m.Nodes {
		if !strings.HasPrefix(id, modelPrefix) {
			continue
		}
		if _, ok := allowed[normalizePath(node.OriginalFilePath)]; ok {
			continue
		}
		if patch := node.strippedPatchPath(); patch != "" {
			if _, ok := allowed[normalizePath(patch)]; ok {
				continue
			}
		}
		delete(m.Nodes, id)
	}
}

func normalizePath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
