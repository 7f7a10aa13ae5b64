package notes

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"
)

//go:embed bundle/*.yaml
var bundleFS embed.FS

// EmbeddedFS returns the bundle files compiled into the binary.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(bundleFS, "bundle")
	if err != nil {
		panic(fmt.Sprintf("opening embedded bundle: %v", err))
	}
	return sub
}

// LoadEmbedded builds the catalog from the bundles compiled into the binary.
func LoadEmbedded() (*Catalog, error) {
	return LoadFS(EmbeddedFS())
}

// LoadDir builds the catalog from every bundle YAML file under rootDir.
func LoadDir(rootDir string) (*Catalog, error) {
	info, err := os.Stat(rootDir)
	if err != nil {
		return nil, fmt.Errorf("loading notes: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("loading notes: %s is not a directory", rootDir)
	}
	return LoadFS(os.DirFS(rootDir))
}

// LoadFS builds the catalog from every bundle YAML file in fsys. Files are
// visited in lexical order, so the catalog version is stable for equal input.
// YAML files that are not bundles are skipped.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	b := newBuilder()

	err := walkYAML(fsys, func(p string, data []byte) {
		if !b.addFile(p, data) {
			slog.Debug("skipping non-bundle yaml", "path", p)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("loading notes: %w", err)
	}

	c, err := b.build()
	if err != nil {
		return nil, err
	}

	slog.Info("notes loaded", "files", b.files, "notes", c.Len(), "version", c.Version())
	return c, nil
}

// LoadBytes builds a catalog from in-memory bundles, in the given order.
func LoadBytes(bundles ...NamedBundle) (*Catalog, error) {
	b := newBuilder()
	for _, nb := range bundles {
		if !b.addFile(nb.Name, nb.Data) {
			b.problem(fmt.Errorf("%s: %w", nb.Name, errNotBundle))
		}
	}
	return b.build()
}

// ReadBundles returns the raw bundle documents in fsys in lexical order,
// skipping YAML files that are not bundles. The documents are not validated;
// pass them to LoadBytes for that.
func ReadBundles(fsys fs.FS) ([]NamedBundle, error) {
	var bundles []NamedBundle
	err := walkYAML(fsys, func(p string, data []byte) {
		if _, err := decodeBundle(p, data); errors.Is(err, errNotBundle) {
			return
		}
		bundles = append(bundles, NamedBundle{Name: p, Data: data})
	})
	if err != nil {
		return nil, fmt.Errorf("reading bundles: %w", err)
	}
	return bundles, nil
}

func walkYAML(fsys fs.FS, fn func(p string, data []byte)) error {
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(path.Ext(p)) {
		case ".yaml", ".yml":
		default:
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		fn(p, data)
		return nil
	})
}

// NamedBundle is one bundle document and the name used in error messages.
type NamedBundle struct {
	Name string
	Data []byte
}
