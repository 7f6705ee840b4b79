package ingestion

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/assetmatch/core"
)

// Materializer obtains a local copy of an asset's bytes. Implementations
// typically fetch from remote storage; the pipeline only ever reads the
// resolved local path.
type Materializer interface {
	// Exists reports whether a local copy of the asset is already present,
	// returning its resolved path when it is.
	Exists(ctx context.Context, asset *core.Asset) (string, bool, error)

	// Materialize fetches the asset into local storage and returns the
	// resolved path of the local copy.
	Materialize(ctx context.Context, asset *core.Asset) (string, error)
}

// ProvenanceSink receives one tuple per successfully stored asset.
// Persistence of provenance is the sink's concern, not the pipeline's.
type ProvenanceSink interface {
	Record(ctx context.Context, tuple core.ProvenanceTuple) error
}

// LocalMaterializer copies assets whose URIs point at the local filesystem
// into a working directory. It understands bare paths and file:// URIs.
type LocalMaterializer struct {
	Root string
}

// NewLocalMaterializer creates a materializer rooted at dir, creating the
// directory if needed.
func NewLocalMaterializer(dir string) (*LocalMaterializer, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty root directory", core.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating materializer root: %w", err)
	}
	return &LocalMaterializer{Root: dir}, nil
}

func (m *LocalMaterializer) localPath(asset *core.Asset) string {
	name := asset.Filename
	if name == "" {
		name = filepath.Base(sourcePath(asset.URI))
	}
	return filepath.Join(m.Root, name)
}

// Exists implements Materializer.
func (m *LocalMaterializer) Exists(_ context.Context, asset *core.Asset) (string, bool, error) {
	path := m.localPath(asset)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return path, false, nil
		}
		return "", false, err
	}
	return path, !info.IsDir(), nil
}

// Materialize implements Materializer by copying the source file into the
// working directory.
func (m *LocalMaterializer) Materialize(_ context.Context, asset *core.Asset) (string, error) {
	src, err := os.Open(sourcePath(asset.URI))
	if err != nil {
		return "", fmt.Errorf("opening source asset: %w", err)
	}
	defer src.Close()

	path := m.localPath(asset)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating local copy: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("copying asset: %w", err)
	}
	return path, nil
}

func sourcePath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}
