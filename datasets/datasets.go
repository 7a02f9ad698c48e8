// Package datasets turns per-subject accelerometer recordings into framed,
// fixed-length windows for freezing-of-gait sequence labeling.
//
// Layout and intended usage:
//
//   - Source reads subject recordings (CSVSource per protocol directory).
//   - Segment slices every subject into windows of WindowLen rows, framed by a
//     start/continuation marker row and an end/continuation marker row, and
//     builds an attention mask and label sequence for each window.
//   - CacheStore persists the resulting WindowArrays per window length so
//     Prepare only segments on a cache miss.
//   - WindowedDataset serves each window as gomlx tensors: the framed window,
//     the one-hot targets and the mask.
//
// The arrays are built eagerly in memory and are read-only once prepared.
package datasets

import "github.com/gomlx/gomlx/pkg/core/tensors"

// Item is one model-ready example.
//
//	Value:  float32 [WindowLen+2, 3]
//	Target: float32 [WindowLen, 4] one-hot label ids
//	Mask:   float32 [WindowLen+2, WindowLen+2]
type Item struct {
	Value  *tensors.Tensor
	Target *tensors.Tensor
	Mask   *tensors.Tensor
}

// Dataset is the random-access capability consumed by training loops.
type Dataset interface {
	Len() int
	Get(idx int) (Item, error)
}
