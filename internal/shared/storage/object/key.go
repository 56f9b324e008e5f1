package object

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/lithammer/shortuuid/v4"
)

var (
	errInvalidFileName = errors.New("invalid file name")
	errInvalidKind     = errors.New("invalid object kind")
	// ErrInvalidKey is returned for keys that were not built by Key.
	ErrInvalidKey = errors.New("invalid storage key")
)

// Key builds "<user hash>/<kind>/<shortuuid>_<file name>".
func Key(userID string, kind Kind, fileName string) (string, error) {
	if !kind.valid() {
		return "", fmt.Errorf("%w: %q", errInvalidKind, kind)
	}
	name, err := cleanFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	return path.Join(UserPrefix(userID), string(kind), shortuuid.New()+"_"+name), nil
}

// UserPrefix is the key prefix for a user's objects. Raw ids such as
// "google:123" never appear in keys.
func UserPrefix(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}

// KindOf checks that key has the shape Key produces and returns its kind.
func KindOf(key string) (Kind, error) {
	parts := strings.Split(key, "/")
	if len(parts) != 3 || len(parts[0]) != sha256.Size*2 || parts[2] == "" || parts[2] == ".." {
		return "", ErrInvalidKey
	}
	if _, err := hex.DecodeString(parts[0]); err != nil {
		return "", ErrInvalidKey
	}
	kind := Kind(parts[1])
	if !kind.valid() {
		return "", ErrInvalidKey
	}
	return kind, nil
}

func cleanFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errInvalidFileName
	}
	s := strings.NewReplacer("/", "_", "\\", "_").Replace(strings.TrimSpace(name))
	if s == "" {
		return "", errInvalidFileName
	}
	return s, nil
}
