package install

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileCategory classifies an artifact file by its destination.
type FileCategory string

// Artifact file categories.
const (
	CategoryLibrary FileCategory = "library"
	CategoryControl FileCategory = "control"
	CategorySQL     FileCategory = "sql"
)

// PlannedFile is one file copy the installer will perform.
type PlannedFile struct {
	Source   string
	DestDir  string
	Category FileCategory
}

// Plan is the ordered set of copies derived from an extracted artifact,
// plus whether the copies must run with elevated privileges.
type Plan struct {
	Files    []PlannedFile
	Escalate bool
}

// artifactFiles groups the files found in an extracted archive.
type artifactFiles struct {
	libraries []string
	controls  []string
	sqls      []string
}

func (f artifactFiles) empty() bool {
	return len(f.libraries) == 0 && len(f.controls) == 0 && len(f.sqls) == 0
}

// searchStrategy locates installable files under an extraction root.
type searchStrategy func(root string) (artifactFiles, error)

// findArtifactFiles tries the conventional-layout strategy first and falls
// back to a recursive extension scan, returning the first non-empty result.
// This tolerates archives both with and without the canonical lib/ and
// extension/ directories.
func findArtifactFiles(root string) (artifactFiles, error) {
	for _, strategy := range []searchStrategy{conventionalLayout, extensionScan} {
		files, err := strategy(root)
		if err != nil {
			return artifactFiles{}, err
		}
		if !files.empty() {
			return files, nil
		}
	}
	return artifactFiles{}, nil
}

// conventionalLayout collects files from directories named lib/ (shared
// libraries) and extension/ (control and SQL files) anywhere in the tree.
func conventionalLayout(root string) (artifactFiles, error) {
	var files artifactFiles

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}

		switch d.Name() {
		case "lib":
			collected, collectErr := collectByExt(path, ".so")
			if collectErr != nil {
				return collectErr
			}
			files.libraries = append(files.libraries, collected...)
		case "extension":
			controls, collectErr := collectByExt(path, ".control")
			if collectErr != nil {
				return collectErr
			}
			sqls, collectErr := collectByExt(path, ".sql")
			if collectErr != nil {
				return collectErr
			}
			files.controls = append(files.controls, controls...)
			files.sqls = append(files.sqls, sqls...)
		}
		return nil
	})
	if err != nil {
		return artifactFiles{}, fmt.Errorf("scanning extracted archive: %w", err)
	}
	return files, nil
}

// collectByExt returns the files directly inside dir with the given extension.
func collectByExt(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ext) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// extensionScan walks the whole tree classifying files by extension.
func extensionScan(root string) (artifactFiles, error) {
	var files artifactFiles

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		switch filepath.Ext(d.Name()) {
		case ".so":
			files.libraries = append(files.libraries, path)
		case ".control":
			files.controls = append(files.controls, path)
		case ".sql":
			files.sqls = append(files.sqls, path)
		}
		return nil
	})
	if err != nil {
		return artifactFiles{}, fmt.Errorf("scanning extracted archive: %w", err)
	}

	sort.Strings(files.libraries)
	sort.Strings(files.controls)
	sort.Strings(files.sqls)
	return files, nil
}

// buildPlan derives the copy plan for an extracted artifact. An archive that
// yields no installable files is treated as a bad artifact.
func buildPlan(root string, targets Targets) (*Plan, error) {
	files, err := findArtifactFiles(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}
	if files.empty() {
		return nil, fmt.Errorf("%w: no installable files (.so, .control, .sql) found in archive", ErrExtractionFailed)
	}

	plan := &Plan{
		Escalate: !dirWritable(targets.LibDir) || !dirWritable(targets.ExtensionDir),
	}
	for _, src := range files.libraries {
		plan.Files = append(plan.Files, PlannedFile{Source: src, DestDir: targets.LibDir, Category: CategoryLibrary})
	}
	for _, src := range files.controls {
		plan.Files = append(plan.Files, PlannedFile{Source: src, DestDir: targets.ExtensionDir, Category: CategoryControl})
	}
	for _, src := range files.sqls {
		plan.Files = append(plan.Files, PlannedFile{Source: src, DestDir: targets.ExtensionDir, Category: CategorySQL})
	}
	return plan, nil
}

// dirWritable probes write access by creating and removing a temp file.
// Directories that do not exist count as non-writable: creating them
// typically needs the same elevated rights as writing into them.
func dirWritable(dir string) bool {
	probe, err := os.CreateTemp(dir, ".pgev-write-probe-*")
	if err != nil {
		return false
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return true
}
