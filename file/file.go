package file

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

var pieceExtensions = []string{".json", ".mid", ".midi"}

// IsPiece reports whether path has an extension the loader understands.
func IsPiece(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range pieceExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// GatherPiecePaths walks root for piece files. maxNum of 0 means no limit.
// A plain file is returned as is.
func GatherPiecePaths(root string, maxNum int) ([]string, error) {
	var res []string
	walk := func(s string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsPiece(s) {
			return nil
		}
		if maxNum == 0 || len(res) < maxNum {
			res = append(res, s)
		}
		return nil
	}
	if err := filepath.WalkDir(root, walk); err != nil {
		return nil, errors.Wrapf(err, "walking %s", root)
	}
	return res, nil
}

// CreateFileNumMap numbers paths in the order they were found.
func CreateFileNumMap(paths []string) map[uint32]string {
	res := make(map[uint32]string)
	for i, v := range paths {
		res[uint32(i)] = v
	}
	return res
}
