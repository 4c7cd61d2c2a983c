package modinfo

import (
	"io"
	"os"

	errs "github.com/matzehuels/modkit/pkg/errors"
	"github.com/matzehuels/modkit/pkg/json"
)

// LoadReplacements reads the obsolete-mod table, an array of
// ["old", "new"] pairs where a one-element entry ["old"] marks a mod as
// removed (mapped to ""). An empty path or a missing file is an empty
// table.
func LoadReplacements(path string) (map[string]string, error) {
	out := make(map[string]string)
	if path == "" {
		return out, nil
	}
	r, err := json.ReadFile(path)
	if os.IsNotExist(err) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}

	if err := r.StartArray(); err != nil {
		return nil, err
	}
	for {
		done, err := r.EndArray()
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		entry, err := r.GetArray()
		if err != nil {
			return nil, err
		}
		old, err := entry.GetString(0)
		if err != nil {
			return nil, err
		}
		repl := ""
		if entry.Size() > 1 {
			if repl, err = entry.GetString(1); err != nil {
				return nil, err
			}
		}
		entry.Finish()
		out[old] = repl
	}
	return out, nil
}

// SaveList writes an active mod list as a pretty-printed JSON array.
func SaveList(w io.Writer, ids []string) error {
	jw := json.NewWriter(w, true)
	if ids == nil {
		ids = []string{}
	}
	jw.Write(ids)
	if err := jw.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// SaveListFile writes a mod list to path. An empty list removes the file.
func SaveListFile(path string, ids []string) error {
	if len(ids) == 0 {
		err := os.Remove(path)
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := SaveList(f, ids); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// LoadList reads a mod list written by [SaveList].
func LoadList(path string) ([]string, error) {
	r, err := json.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "mod list %s not found", path)
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := r.Read(&ids); err != nil {
		return nil, err
	}
	return ids, nil
}
