package conda

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/warptools/envforge/pkg/envapi"
)

// specIndent matches the layout conda itself uses when exporting environments.
const specIndent = 2

// EncodeSpec renders the spec document, including any identity changes.
//
// Errors:
//
//   - envforge-error-serialization -- when the document cannot be encoded
func EncodeSpec(spec *EnvironmentSpec) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(specIndent)
	if err := enc.Encode(spec.doc); err != nil {
		return nil, envapi.ErrorSerialization("encoding spec file", err)
	}
	if err := enc.Close(); err != nil {
		return nil, envapi.ErrorSerialization("encoding spec file", err)
	}
	return buf.Bytes(), nil
}

// WriteSpec persists the spec back to its file if its identity changed.
// The file is replaced atomically; readers see either the old or the new contents.
// The original file's permissions are kept.
//
// Errors:
//
//   - envforge-error-serialization -- when the document cannot be encoded
//   - envforge-error-io -- when the file cannot be replaced
func WriteSpec(spec *EnvironmentSpec) error {
	if !spec.dirty {
		return nil
	}
	data, err := EncodeSpec(spec)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(spec.Path, data); err != nil {
		return err
	}
	spec.dirty = false
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	dir, base := filepath.Split(path)
	tmp := filepath.Join(dir, "."+base+"."+uuid.NewString()+".tmp")
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return envapi.ErrorIo("creating temporary spec file", tmp, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return envapi.ErrorIo("writing temporary spec file", tmp, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return envapi.ErrorIo("syncing temporary spec file", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return envapi.ErrorIo("closing temporary spec file", tmp, err)
	}
	// OpenFile's mode is filtered by the umask.
	if err := os.Chmod(tmp, mode); err != nil {
		os.Remove(tmp)
		return envapi.ErrorIo("setting spec file permissions", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return envapi.ErrorIo("replacing spec file", path, err)
	}
	return nil
}
