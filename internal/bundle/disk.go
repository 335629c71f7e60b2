package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Disk is a bundle file store rooted at one directory. All paths handed to
// it are relative to that root.
type Disk struct {
	root string
}

// NewDisk creates a Disk over a bundle root directory.
func NewDisk(root string) (*Disk, error) {
	if root == "" {
		return nil, fmt.Errorf("bundle root cannot be empty")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat bundle root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("bundle root %s is not a directory", root)
	}
	return &Disk{root: root}, nil
}

// Root returns the bundle root directory.
func (d *Disk) Root() string { return d.root }

// Path returns the absolute path for a bundle-relative path.
func (d *Disk) Path(rel string) string {
	return filepath.Join(d.root, filepath.FromSlash(rel))
}

// FileExists reports whether a bundle-relative file exists.
func (d *Disk) FileExists(rel string) bool {
	info, err := os.Stat(d.Path(rel))
	return err == nil && !info.IsDir()
}

// ReadFile reads a whole bundle-relative file.
func (d *Disk) ReadFile(rel string) ([]byte, error) {
	data, err := os.ReadFile(d.Path(rel))
	if err != nil {
		return nil, fmt.Errorf("read bundle file %s: %w", rel, err)
	}
	return data, nil
}

// Files lists the YAML files directly under a bundle-relative directory,
// sorted by name for deterministic import order. A missing directory is an
// empty listing, not an error: bundles are often partial.
func (d *Disk) Files(relDir string) ([]string, error) {
	entries, err := os.ReadDir(d.Path(relDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list bundle dir %s: %w", relDir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if ext := strings.ToLower(filepath.Ext(name)); ext != ".yml" && ext != ".yaml" {
			continue
		}
		files = append(files, relDir+"/"+name)
	}
	sort.Strings(files)

	return files, nil
}
