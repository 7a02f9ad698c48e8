package datasets

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// WindowedDataset pairs each window with its one-hot targets and mask.
// Get and Batch only read the underlying arrays and may be called
// concurrently. Shuffle, Yield and Reset move the epoch cursor and belong to
// a single consumer.
type WindowedDataset struct {
	// BatchSize for yielding batches.
	BatchSize int

	arrays *WindowArrays
	order  []int
	pos    int
	rand   *rand.Rand
}

var _ Dataset = (*WindowedDataset)(nil)

// NewWindowedDataset wraps prepared arrays. The arrays are shared, not copied.
func NewWindowedDataset(arrays *WindowArrays) (*WindowedDataset, error) {
	if arrays == nil {
		return nil, fmt.Errorf("arrays cannot be nil")
	}
	if err := arrays.Validate(); err != nil {
		return nil, err
	}
	order := make([]int, arrays.Count)
	for i := range order {
		order[i] = i
	}
	return &WindowedDataset{
		BatchSize: 32,
		arrays:    arrays,
		order:     order,
		rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// WindowLen returns the number of data rows per window.
func (d *WindowedDataset) WindowLen() int { return d.arrays.WindowLen }

// Arrays returns the underlying arrays. They are shared with the dataset and
// must not be modified.
func (d *WindowedDataset) Arrays() *WindowArrays { return d.arrays }

// Len returns the number of windows.
func (d *WindowedDataset) Len() int { return d.arrays.Count }

// Get returns the window at idx as tensors.
func (d *WindowedDataset) Get(idx int) (Item, error) {
	value, target, mask, err := d.example(idx)
	if err != nil {
		return Item{}, err
	}
	side := FrameLen(d.arrays.WindowLen)
	return Item{
		Value:  tensors.FromFlatDataAndDimensions(value, side, Channels),
		Target: tensors.FromFlatDataAndDimensions(target, d.arrays.WindowLen, NumLabels),
		Mask:   tensors.FromFlatDataAndDimensions(mask, side, side),
	}, nil
}

// example returns fresh flat copies of window idx.
func (d *WindowedDataset) example(idx int) (value, target, mask []float32, err error) {
	if idx < 0 || idx >= d.arrays.Count {
		return nil, nil, nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, idx, d.arrays.Count)
	}
	target, err = oneHot(d.arrays.LabelSeq(idx))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("window %d: %w", idx, err)
	}
	value = append([]float32(nil), d.arrays.Window(idx)...)
	mask = append([]float32(nil), d.arrays.Mask(idx)...)
	return value, target, mask, nil
}

// oneHot expands label ids into rows of the NumLabels identity matrix.
func oneHot(labels []int32) ([]float32, error) {
	out := make([]float32, len(labels)*NumLabels)
	for i, id := range labels {
		if id < 0 || id >= NumLabels {
			return nil, fmt.Errorf("%w: label id %d at position %d", ErrLabelInvariant, id, i)
		}
		out[i*NumLabels+int(id)] = 1
	}
	return out, nil
}

// Batch stacks the windows at indices into tensors with a leading batch
// dimension.
func (d *WindowedDataset) Batch(indices []int) (Item, error) {
	wl := d.arrays.WindowLen
	side := FrameLen(wl)
	values := make([]float32, 0, len(indices)*side*Channels)
	targets := make([]float32, 0, len(indices)*wl*NumLabels)
	masks := make([]float32, 0, len(indices)*side*side)

	for _, idx := range indices {
		value, target, mask, err := d.example(idx)
		if err != nil {
			return Item{}, err
		}
		values = append(values, value...)
		targets = append(targets, target...)
		masks = append(masks, mask...)
	}

	n := len(indices)
	return Item{
		Value:  tensors.FromFlatDataAndDimensions(values, n, side, Channels),
		Target: tensors.FromFlatDataAndDimensions(targets, n, wl, NumLabels),
		Mask:   tensors.FromFlatDataAndDimensions(masks, n, side, side),
	}, nil
}

// Shuffle permutes the order in which Yield visits windows and restarts the
// epoch.
func (d *WindowedDataset) Shuffle(seed int64) {
	d.rand.Seed(seed)
	d.rand.Shuffle(len(d.order), func(i, j int) {
		d.order[i], d.order[j] = d.order[j], d.order[i]
	})
	d.pos = 0
}

// Name returns the name of the dataset.
func (d *WindowedDataset) Name() string {
	return fmt.Sprintf("WindowedDataset(%s)", Namespace(d.arrays.WindowLen))
}

// Yield returns the next batch of at most BatchSize windows for gomlx
// training loops: inputs are the windows and masks, labels the one-hot
// targets. It returns io.EOF once the epoch is exhausted.
func (d *WindowedDataset) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	if d.pos >= len(d.order) {
		return nil, nil, nil, io.EOF
	}
	size := d.BatchSize
	if size <= 0 {
		size = 32
	}
	end := min(d.pos+size, len(d.order))
	batch, err := d.Batch(d.order[d.pos:end])
	if err != nil {
		return nil, nil, nil, err
	}
	d.pos = end
	return nil, []*tensors.Tensor{batch.Value, batch.Mask}, []*tensors.Tensor{batch.Target}, nil
}

// Reset restarts the epoch without changing the order.
func (d *WindowedDataset) Reset() {
	d.pos = 0
}
