package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	usersFilename      = "users.json"
	portfoliosFilename = "portfolios.json"
	ratesFilename      = "rates.json"
	historyFilename    = "exchange_rates.json"
	sessionFilename    = ".session"
)

// FileStore is a folder of JSON files.
type FileStore struct {
	dir string
}

// Open returns the store living in dir, creating the folder if needed.
func Open(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open error: cannot create data folder %q: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the data folder.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(name string) string { return filepath.Join(s.dir, name) }

// readJSON decodes the named file into v. It returns false, and leaves v
// untouched, when the file does not exist.
func (s *FileStore) readJSON(name string, v any) (bool, error) {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load error: cannot read %q: %w", name, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("format error %q: %w", name, err)
	}
	return true, nil
}

// writeJSON atomically replaces the named file with the indented encoding of v.
func (s *FileStore) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("persist error: cannot encode %q: %w", name, err)
	}
	return s.writeFile(name, append(data, '\n'))
}

func (s *FileStore) writeFile(name string, data []byte) (err error) {
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("persist error: cannot create temporary file for %q: %w", name, err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("persist error: cannot write %q: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("persist error: cannot sync %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("persist error: cannot close %q: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return fmt.Errorf("persist error: cannot replace %q: %w", name, err)
	}
	return nil
}

// CurrentUserID returns the id stored in the session file. A missing or
// unreadable session means nobody is logged in.
func (s *FileStore) CurrentUserID() (int, bool, error) {
	data, err := os.ReadFile(s.path(sessionFilename))
	if errors.Is(err, fs.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("load error: cannot read session: %w", err)
	}
	id, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, false, nil
	}
	return id, true, nil
}

// SetCurrentUser opens a session for id.
func (s *FileStore) SetCurrentUser(id int) error {
	return s.writeFile(sessionFilename, []byte(strconv.Itoa(id)))
}

// Logout removes the session file.
func (s *FileStore) Logout() error {
	err := os.Remove(s.path(sessionFilename))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("persist error: cannot remove session: %w", err)
	}
	return nil
}
