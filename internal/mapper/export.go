package mapper

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Export writes the mapping set as indented JSON. The output is stable for
// a given set, so exports diff cleanly under version control.
func Export(w io.Writer, set *Set) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("encode mapping set: %w", err)
	}

	return nil
}

// ExportFile writes the mapping set to path, creating or truncating it.
func ExportFile(path string, set *Set) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create mapping file: %w", err)
	}
	defer f.Close()

	if err := Export(f, set); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close mapping file: %w", err)
	}

	return nil
}

// Load reads a mapping set from r. Sets with an unknown schema version are
// rejected rather than partially interpreted.
func Load(r io.Reader) (*Set, error) {
	var set Set

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&set); err != nil {
		return nil, fmt.Errorf("decode mapping set: %w", err)
	}

	if set.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("unsupported mapping schema version %q (want %q)",
			set.SchemaVersion, SchemaVersion)
	}

	return &set, nil
}

// LoadFile reads a mapping set from path.
func LoadFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mapping file: %w", err)
	}
	defer f.Close()

	return Load(f)
}
