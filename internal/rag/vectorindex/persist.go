package vectorindex

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/akepally/ScholarRAG/internal/config"
	"github.com/akepally/ScholarRAG/internal/domain/paper"
)

// Manifest is the human-readable sidecar written next to the gob payload.
// Status endpoints read it without touching the payload.
type Manifest struct {
	Version        int       `json:"version"`
	Checksum       string    `json:"checksum"`
	ChunkCount     int       `json:"chunk_count"`
	Dimension      int       `json:"dimension"`
	EmbeddingModel string    `json:"embedding_model"`
	SavedAt        time.Time `json:"saved_at"`
}

type payload struct {
	Version   int
	Model     string
	Dimension int
	Chunks    []paper.Chunk
	Vectors   [][]float32
}

// Save writes vectors and the metadata side table as one payload plus the
// manifest. The payload lands via temp file and rename, so a crash mid-save
// leaves the previous state intact.
func (x *Index) Save(dir string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating index dir: %w", err)
	}

	p := payload{
		Version:   config.IndexVersion,
		Model:     x.model,
		Dimension: x.dimension,
		Chunks:    x.chunks,
		Vectors:   x.vectors,
	}
	tmp, err := os.CreateTemp(dir, "index-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp payload: %w", err)
	}
	if err := gob.NewEncoder(tmp).Encode(p); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encoding index payload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp payload: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, config.IndexFileName)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing index payload: %w", err)
	}

	m := Manifest{
		Version:        config.IndexVersion,
		Checksum:       checksumChunks(x.chunks),
		ChunkCount:     len(x.chunks),
		Dimension:      x.dimension,
		EmbeddingModel: x.model,
		SavedAt:        time.Now().UTC(),
	}
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, config.ManifestFileName), raw, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// Load reads a saved index and refuses mismatched pairs: manifest and
// payload must agree on version, count, dimension and corpus checksum.
func Load(dir string) (*Index, error) {
	m, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(dir, config.IndexFileName))
	if err != nil {
		return nil, fmt.Errorf("opening index payload: %w", err)
	}
	defer f.Close()

	var p payload
	if err := gob.NewDecoder(f).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding index payload: %w", err)
	}

	if p.Version != m.Version {
		return nil, fmt.Errorf("index version %d does not match manifest version %d", p.Version, m.Version)
	}
	if len(p.Chunks) != len(p.Vectors) {
		return nil, fmt.Errorf("corrupt index payload: %d chunks vs %d vectors", len(p.Chunks), len(p.Vectors))
	}
	if m.ChunkCount != len(p.Chunks) {
		return nil, fmt.Errorf("manifest chunk count %d does not match payload %d", m.ChunkCount, len(p.Chunks))
	}
	if m.Dimension != p.Dimension {
		return nil, fmt.Errorf("manifest dimension %d does not match payload %d", m.Dimension, p.Dimension)
	}
	if got := checksumChunks(p.Chunks); got != m.Checksum {
		return nil, fmt.Errorf("corpus checksum mismatch: manifest %s, payload %s", m.Checksum, got)
	}

	x := &Index{
		model:     p.Model,
		dimension: p.Dimension,
		chunks:    p.Chunks,
		vectors:   p.Vectors,
		byId:      make(map[string]int, len(p.Chunks)),
	}
	for i, c := range p.Chunks {
		x.byId[c.Id] = i
	}
	return x, nil
}

func ReadManifest(dir string) (Manifest, error) {
	raw, err := os.ReadFile(filepath.Join(dir, config.ManifestFileName))
	if err != nil {
		return Manifest{}, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return Manifest{}, fmt.Errorf("parsing manifest: %w", err)
	}
	return m, nil
}

// Exists reports whether a saved index pair is present at dir.
func Exists(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, config.IndexFileName)); err != nil {
		return false
	}
	if _, err := os.Stat(filepath.Join(dir, config.ManifestFileName)); err != nil {
		return false
	}
	return true
}
