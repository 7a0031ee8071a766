package pathstore

import (
	"path"
	"strings"
)

// DefaultRoot is the storage root used by MakeFilePath.
const DefaultRoot = "/usd"

const illegalFilenameChars = `<>:"\|*/`

// MakeFilePath returns the normalized absolute path of filename inside directory under
// DefaultRoot. See MakeFilePathUnder.
func MakeFilePath(directory, filename string) string {
	return MakeFilePathUnder(DefaultRoot, directory, filename)
}

// MakeFilePathUnder returns the normalized absolute path of filename inside directory under
// root. Characters illegal in filenames (`<>:"\|*` and `/`) and leading dots are removed from
// filename, so it can never name a parent directory. Redundant separators are collapsed, `..` in
// directory cannot climb above the root, a directory that already starts with the root is taken
// relative to it, and an empty directory means the root itself. Paths always use forward slashes.
//
//	MakeFilePathUnder("/usd", "", "test")             == "/usd/test"
//	MakeFilePathUnder("/usd", "/usd/subdir/", "test") == "/usd/subdir/test"
//	MakeFilePathUnder("/usd", "subdir", "test")       == "/usd/subdir/test"
func MakeFilePathUnder(root, directory, filename string) string {
	cleanRoot := path.Clean("/" + root)
	cleanDir := path.Clean("/" + directory)
	switch {
	case cleanDir == cleanRoot:
		cleanDir = ""
	case cleanRoot != "/" && strings.HasPrefix(cleanDir, cleanRoot+"/"):
		cleanDir = strings.TrimPrefix(cleanDir, cleanRoot)
	}
	return path.Join(cleanRoot, cleanDir, SanitizeFilename(filename))
}

// SanitizeFilename removes characters that are illegal in a filename, then any leading dots. The
// result is empty when nothing usable is left.
func SanitizeFilename(filename string) string {
	return strings.TrimLeft(strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegalFilenameChars, r) {
			return -1
		}
		return r
	}, filename), ".")
}
