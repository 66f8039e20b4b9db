package flat

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Files written inside the index directory.
const (
	VectorsFileName  = "index.bin"
	DocstoreFileName = "docstore.json"
)

// headerSize covers magic, dimension and count.
const headerSize = 12

// magic identifies the vector file format.
var magic = [4]byte{'F', 'L', 'T', '1'}

// docstoreEntry is the serialised form of one chunk.
type docstoreEntry struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// Save writes index.bin and docstore.json into dir, creating it if needed.
func (idx *Index) Save(dir string) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.closed {
		return ErrClosed
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("flat: create index dir: %w", err)
	}

	if err := writeVectors(filepath.Join(dir, VectorsFileName), idx.dimension, idx.vectors); err != nil {
		return err
	}

	docs := make([]docstoreEntry, len(idx.entries))
	for i, e := range idx.entries {
		docs[i] = docstoreEntry{ID: e.id, Content: e.chunk.Content, Metadata: e.chunk.Metadata}
	}
	data, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("flat: marshal docstore: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, DocstoreFileName), data, 0o644); err != nil {
		return fmt.Errorf("flat: write docstore: %w", err)
	}
	return nil
}

// Load reads an index saved by Save and binds it to embedder.
func Load(dir string, embedder driven.EmbeddingService) (*Index, error) {
	dim, vectors, err := readVectors(filepath.Join(dir, VectorsFileName))
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, DocstoreFileName))
	if err != nil {
		return nil, fmt.Errorf("flat: read docstore: %w", err)
	}
	var docs []docstoreEntry
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("flat: decode docstore: %w", err)
	}
	if len(docs) != len(vectors) {
		return nil, fmt.Errorf("flat: docstore has %d entries for %d vectors", len(docs), len(vectors))
	}

	idx := New(embedder)
	idx.dimension = dim
	idx.vectors = vectors
	idx.entries = make([]entry, len(docs))
	for i, d := range docs {
		idx.entries[i] = entry{id: d.ID, chunk: domain.Chunk{Content: d.Content, Metadata: d.Metadata}}
	}
	return idx, nil
}

func writeVectors(path string, dim int, vectors [][]float32) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("flat: create vectors file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("flat: close vectors file: %w", cerr)
		}
	}()

	w := bufio.NewWriter(f)
	header := make([]byte, headerSize)
	copy(header, magic[:])
	binary.LittleEndian.PutUint32(header[4:], uint32(dim))
	binary.LittleEndian.PutUint32(header[8:], uint32(len(vectors)))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("flat: write header: %w", err)
	}

	buf := make([]byte, 4)
	for _, v := range vectors {
		for _, x := range v {
			binary.LittleEndian.PutUint32(buf, math.Float32bits(x))
			if _, err := w.Write(buf); err != nil {
				return fmt.Errorf("flat: write vectors: %w", err)
			}
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flat: flush vectors: %w", err)
	}
	return nil
}

func readVectors(path string) (int, [][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, fmt.Errorf("flat: open vectors file: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, nil, fmt.Errorf("flat: read header: %w", err)
	}
	if [4]byte(header[:4]) != magic {
		return 0, nil, errors.New("flat: not a vector index file")
	}
	dim := int64(binary.LittleEndian.Uint32(header[4:]))
	count := int64(binary.LittleEndian.Uint32(header[8:]))

	info, err := f.Stat()
	if err != nil {
		return 0, nil, fmt.Errorf("flat: stat vectors file: %w", err)
	}
	if err := checkVectorsSize(info.Size(), dim, count); err != nil {
		return 0, nil, err
	}

	vectors := make([][]float32, count)
	buf := make([]byte, 4*dim)
	for i := range vectors {
		if _, err := io.ReadFull(r, buf); err != nil {
			return 0, nil, fmt.Errorf("flat: read vector %d: %w", i, err)
		}
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*j:]))
		}
		vectors[i] = vec
	}
	return int(dim), vectors, nil
}

// checkVectorsSize rejects a header whose dimensions do not match the file
// length, before anything is allocated from it.
func checkVectorsSize(size, dim, count int64) error {
	payload := size - headerSize
	var ok bool
	if dim == 0 {
		ok = count == 0 && payload == 0
	} else {
		row := 4 * dim
		ok = payload%row == 0 && payload/row == count
	}
	if !ok {
		return fmt.Errorf("flat: corrupt vectors file: %d bytes cannot hold %d vectors of dimension %d", size, count, dim)
	}
	return nil
}
