// fsimpl contains helper functions for implementing a splice.FileSystem
package fsimpl

import (
	"encoding/hex"
	"path"
	"strings"

	"github.com/google/uuid"
)

// RandomHexString returns the 32 character hex encoding
// of a random version 4 UUID.
func RandomHexString() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// DirAndName is a generic helper for FileSystem.DirAndName implementations.
// path.Split or filepath.Split don't have the wanted behaviour when given a path ending in a separator.
// DirAndName returns the parent directory of filePath and the name with that directory of the last filePath element.
// If filePath is the root of the file systeme, then an empty string will be returned as name.
// If filePath does not contain a separator before the name part, then "." will be returned as dir.
func DirAndName(filePath string, volumeLen int, separator string) (dir, name string) {
	if filePath == "" {
		return "", ""
	}

	filePath = strings.TrimSuffix(filePath, separator)

	if filePath == "" {
		return separator, ""
	}

	pos := strings.LastIndex(filePath, separator)
	switch {
	case pos == -1:
		return ".", filePath
	case pos == 0 && volumeLen == 0:
		return separator, filePath[1:]
	case pos <= volumeLen:
		return filePath, ""
	}

	return filePath[:pos], filePath[pos+1:]
}

// JoinCleanPath joins uriParts with slashes into a cleaned absolute path.
// FileSystem implementations that use "/" as separator can use it.
func JoinCleanPath(uriParts ...string) string {
	cleanPath := path.Join(uriParts...)
	if !strings.HasPrefix(cleanPath, "/") {
		cleanPath = "/" + cleanPath
	}
	return path.Clean(cleanPath)
}
