package statestore

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/turtacn/pairgate/pkg/constants"
	"github.com/turtacn/pairgate/pkg/errors"
)

// WriteFileAtomic writes data to path via a freshly-named temporary file in
// the same directory followed by a rename, which is atomic on POSIX
// filesystems. The file is created at 0600 and the permission is re-asserted
// on the final path, so a crash at any point leaves either the old content or
// the new content, never a truncated mix.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.StateDirMode); err != nil {
		return errors.ErrInternal("failed to create state directory").WithCause(err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.ErrInternal("failed to create temp file").WithCause(err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if err := tmp.Chmod(constants.StateFileMode); err != nil {
		cleanup()
		return errors.ErrInternal("failed to set temp file mode").WithCause(err)
	}
	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return errors.ErrInternal("failed to write temp file").WithCause(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.ErrInternal("failed to close temp file").WithCause(err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.ErrInternal("failed to rename temp file into place").WithCause(err)
	}
	if err := os.Chmod(path, constants.StateFileMode); err != nil {
		return errors.ErrInternal("failed to set state file mode").WithCause(err)
	}
	return nil
}

// MarshalState renders v as pretty-printed UTF-8 JSON with a trailing
// newline, the persisted-state format shared by every store file.
func MarshalState(v interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.ErrInternal("failed to marshal state").WithCause(err)
	}
	return append(data, '\n'), nil
}

//Personal.AI order the ending
