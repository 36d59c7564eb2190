package typeparser

import (
	"io/fs"
	"path/filepath"
	"sort"

	"ctypereader/setting"
)

// FindHeaderFiles returns the header files under dir, sub folders included, sorted.
// A file is a header when its base name matches one of the header patterns and none
// of the exclude patterns. Folders that can't be read are reported and skipped.
func (_this *Parser) FindHeaderFiles(dir string) []string {
	files := make([]string, 0, 16)
	_this.log.Info("Searching folder %s", dir)

	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			_this.log.Error("Cannot read folder %s: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != dir {
				_this.log.Debug("Searching folder %s", path)
			}
			return nil
		}

		name := d.Name()
		if !matchAny(_this.headerPatterns, name) {
			_this.log.Info("Ignoring file %s", path)
			return nil
		}
		if matchAny(_this.excludePatterns, name) {
			_this.log.Info("Ignoring excluded file %s", path)
			return nil
		}
		files = append(files, filepath.Clean(path))
		return nil
	})

	sort.Strings(files)
	return files
}

func matchAny(matchers []*setting.GlobMatcher, name string) bool {
	for _, m := range matchers {
		if m.Match(name) {
			return true
		}
	}
	return false
}
