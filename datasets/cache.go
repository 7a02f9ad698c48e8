package datasets

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"log"
	"path"
	"strconv"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// Blob names inside a cache namespace. The labels blob is removed first and
// written last on Save, so its presence marks a complete entry.
const (
	windowsBlob = "batches.gob"
	masksBlob   = "masks.gob"
	labelsBlob  = "preds.gob"
)

// CacheStore persists the segmented arrays, one namespace per window length.
// Each array is stored as a gob-serialized gomlx tensor, so the blob carries
// its own dtype and dimensions. There is no versioning: if the segmentation or
// the input data change, the namespace has to be removed externally.
type CacheStore struct {
	Blobs BlobStore
}

// NewCacheStore creates a cache store on top of blobs.
func NewCacheStore(blobs BlobStore) *CacheStore {
	return &CacheStore{Blobs: blobs}
}

// Namespace returns the namespace used for windowLen.
func Namespace(windowLen int) string {
	return "len_" + strconv.Itoa(windowLen)
}

func blobName(windowLen int, name string) string {
	return path.Join(Namespace(windowLen), name)
}

// Has reports whether all three blobs for windowLen exist.
func (c *CacheStore) Has(windowLen int) bool {
	for _, name := range []string{windowsBlob, masksBlob, labelsBlob} {
		if !c.Blobs.Exists(blobName(windowLen, name)) {
			return false
		}
	}
	return true
}

// Load returns the cached arrays for windowLen. ok is false when any of the
// three blobs is missing. A blob that exists but cannot be decoded into
// consistent arrays returns an error wrapping ErrCacheCorrupt.
func (c *CacheStore) Load(windowLen int) (arrays *WindowArrays, ok bool, err error) {
	if !c.Has(windowLen) {
		return nil, false, nil
	}

	side := FrameLen(windowLen)
	windows, err := readBlob[float32](c.Blobs, blobName(windowLen, windowsBlob), -1, side, Channels)
	if err != nil {
		return nil, false, err
	}
	count := len(windows) / (side * Channels)
	masks, err := readBlob[float32](c.Blobs, blobName(windowLen, masksBlob), count, side, side)
	if err != nil {
		return nil, false, err
	}
	labels, err := readBlob[int32](c.Blobs, blobName(windowLen, labelsBlob), count, windowLen)
	if err != nil {
		return nil, false, err
	}

	log.Printf("[Cache] hit: %s (%d windows)", Namespace(windowLen), count)
	return &WindowArrays{
		WindowLen: windowLen,
		Count:     count,
		Windows:   windows,
		Masks:     masks,
		Labels:    labels,
	}, true, nil
}

// readBlob decodes one tensor and checks its dtype and dimensions. A negative
// entry in dims matches any size.
func readBlob[T float32 | int32](blobs BlobStore, name string, dims ...int) ([]T, error) {
	data, err := blobs.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrCacheCorrupt, name, err)
	}
	t, err := tensors.GobDeserialize(gob.NewDecoder(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrCacheCorrupt, name, err)
	}

	want := tensors.FromFlatDataAndDimensions(make([]T, 1), 1).DType()
	if t.DType() != want {
		return nil, fmt.Errorf("%w: %s: dtype %s, expected %s", ErrCacheCorrupt, name, t.DType(), want)
	}
	got := t.Shape().Dimensions
	if len(got) != len(dims) {
		return nil, fmt.Errorf("%w: %s: dimensions %v, expected rank %d", ErrCacheCorrupt, name, got, len(dims))
	}
	for i, d := range dims {
		if d >= 0 && got[i] != d {
			return nil, fmt.Errorf("%w: %s: dimensions %v, expected %v", ErrCacheCorrupt, name, got, dims)
		}
	}
	return tensors.CopyFlatData[T](t), nil
}

func encodeBlob[T float32 | int32](data []T, dims ...int) ([]byte, error) {
	var buf bytes.Buffer
	t := tensors.FromFlatDataAndDimensions(data, dims...)
	if err := t.GobSerialize(gob.NewEncoder(&buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the three arrays into the namespace of a.WindowLen, replacing
// whatever was there. The labels blob is removed before anything is written
// and written last, so a Save that fails midway leaves a miss rather than a
// mix of old and new arrays.
func (c *CacheStore) Save(a *WindowArrays) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("refusing to cache inconsistent arrays: %w", err)
	}
	side := FrameLen(a.WindowLen)

	commit := blobName(a.WindowLen, labelsBlob)
	if err := c.Blobs.Remove(commit); err != nil {
		return fmt.Errorf("invalidate %s: %w", commit, err)
	}

	windows, err := encodeBlob(a.Windows, a.Count, side, Channels)
	if err != nil {
		return fmt.Errorf("encode %s: %w", windowsBlob, err)
	}
	masks, err := encodeBlob(a.Masks, a.Count, side, side)
	if err != nil {
		return fmt.Errorf("encode %s: %w", masksBlob, err)
	}
	labels, err := encodeBlob(a.Labels, a.Count, a.WindowLen)
	if err != nil {
		return fmt.Errorf("encode %s: %w", labelsBlob, err)
	}

	for _, b := range []struct {
		name string
		data []byte
	}{
		{windowsBlob, windows},
		{masksBlob, masks},
		{labelsBlob, labels},
	} {
		name := blobName(a.WindowLen, b.name)
		if err := c.Blobs.WriteFile(name, b.data); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	log.Printf("[Cache] saved %s (%d windows)", Namespace(a.WindowLen), a.Count)
	return nil
}
