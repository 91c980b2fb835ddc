package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	bookmarksRootKey = "bookmarks locations"

	listUUIDKey      = "UUID"
	listCreatedAtKey = "Current date time"
)

// bookmarksDocument is the on-disk shape of the bookmark file:
// {"bookmarks locations": {"<uuid>": {...}}}.
type bookmarksDocument map[string]map[string]BookmarkRecord

// obsListDocument holds one observing list: its identity, creation time and
// records keyed by UUID, all flattened into a single JSON object.
type obsListDocument struct {
	UUID      string
	CreatedAt string
	Records   map[string]ObservingListRecord
}

func (d obsListDocument) MarshalJSON() ([]byte, error) {
	obj := make(map[string]json.RawMessage, len(d.Records)+2)
	for id, rec := range d.Records {
		raw, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("marshal record %s: %w", id, err)
		}
		obj[id] = raw
	}
	// Metadata keys win over a record that happens to use the same key.
	uuidRaw, _ := json.Marshal(d.UUID)
	createdRaw, _ := json.Marshal(d.CreatedAt)
	obj[listUUIDKey] = uuidRaw
	obj[listCreatedAtKey] = createdRaw
	// encoding/json sorts map keys, which keeps the output stable between saves.
	return json.Marshal(obj)
}

func (d *obsListDocument) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	d.Records = make(map[string]ObservingListRecord, len(obj))
	for key, raw := range obj {
		switch key {
		case listUUIDKey:
			if err := json.Unmarshal(raw, &d.UUID); err != nil {
				return fmt.Errorf("list %s: %w", key, err)
			}
		case listCreatedAtKey:
			if err := json.Unmarshal(raw, &d.CreatedAt); err != nil {
				return fmt.Errorf("list %s: %w", key, err)
			}
		default:
			var rec ObservingListRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				return fmt.Errorf("record %s: %w", key, err)
			}
			d.Records[key] = rec.normalized()
		}
	}
	return nil
}

// readObsListFile returns every list in an observing list file keyed by list
// name. Lists are kept raw so lists other than the one being edited survive a
// rewrite untouched. A missing file yields an empty map.
func readObsListFile(path string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	lists := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &lists); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return lists, nil
}

func readBookmarksFile(path string) (map[string]BookmarkRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc bookmarksDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	records, ok := doc[bookmarksRootKey]
	if !ok {
		return nil, fmt.Errorf("decode %s: missing %q object", path, bookmarksRootKey)
	}
	return records, nil
}

// backupFile moves an unreadable file to "<path>.bak" before it is rewritten.
func backupFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s is not a regular file", path)
	}
	backup := path + ".bak"
	if err := os.Rename(path, backup); err != nil {
		return "", fmt.Errorf("rename %s: %w", path, err)
	}
	return backup, nil
}

// writeJSONFile replaces path with the indented JSON encoding of v.
func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return writeFileReplace(path, data)
}

// writeFileReplace writes data to a temporary file next to path and renames
// it over path, so a failed write never leaves a truncated file behind.
func writeFileReplace(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".skymarks-*")
	if err != nil {
		return fmt.Errorf("open %s for writing: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
