package companion

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// slugFor turns a repo's absolute path into the directory name the
// session-transcript store uses for it: "/" replaced by "-" (spec.md
// §4.8).
func slugFor(repoPath string) string {
	return strings.ReplaceAll(repoPath, "/", "-")
}

// projectDir returns the per-repo transcript directory, if it exists.
func (r *Reader) projectDir(repoPath string) (string, bool) {
	if r.root == "" {
		return "", false
	}
	dir := filepath.Join(r.root, slugFor(repoPath))
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return dir, true
}

// sessionFiles lists the project's *.jsonl transcript files, most
// recently modified first.
func (r *Reader) sessionFiles(repoPath string) []string {
	dir, ok := r.projectDir(repoPath)
	if !ok {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	type fileInfo struct {
		path    string
		modTime int64
	}
	var files []fileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, fileInfo{path: filepath.Join(dir, e.Name()), modTime: info.ModTime().UnixNano()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].modTime > files[j].modTime })

	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.path
	}
	return out
}

// sessionIDFromPath extracts the session id from a transcript file name
// ("<session-id>.jsonl").
func sessionIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
