package datasets

import (
	"fmt"
	"log"
	"time"
)

// DefaultProgressInterval is how often Segment logs progress.
const DefaultProgressInterval = 3 * time.Second

// WindowArrays holds the segmented windows, masks and label sequences of a
// whole dataset in flat row-major buffers sharing the leading dimension Count.
//
//	Windows: [Count, FrameLen, Channels]
//	Masks:   [Count, FrameLen, FrameLen]
//	Labels:  [Count, WindowLen]
type WindowArrays struct {
	WindowLen int
	Count     int
	Windows   []float32
	Masks     []float32
	Labels    []int32
}

// NewWindowArrays returns empty arrays for the given window length.
func NewWindowArrays(windowLen int) *WindowArrays {
	return &WindowArrays{WindowLen: windowLen}
}

func (a *WindowArrays) windowSize() int { return FrameLen(a.WindowLen) * Channels }
func (a *WindowArrays) maskSize() int   { return FrameLen(a.WindowLen) * FrameLen(a.WindowLen) }

// Window returns the flattened framed window at i.
func (a *WindowArrays) Window(i int) []float32 {
	n := a.windowSize()
	return a.Windows[i*n : (i+1)*n]
}

// Mask returns the flattened mask at i.
func (a *WindowArrays) Mask(i int) []float32 {
	n := a.maskSize()
	return a.Masks[i*n : (i+1)*n]
}

// LabelSeq returns the label ids of window i.
func (a *WindowArrays) LabelSeq(i int) []int32 {
	return a.Labels[i*a.WindowLen : (i+1)*a.WindowLen]
}

func (a *WindowArrays) append(window, mask []float32, labels []int32) {
	a.Windows = append(a.Windows, window...)
	a.Masks = append(a.Masks, mask...)
	a.Labels = append(a.Labels, labels...)
	a.Count++
}

// Validate checks that the three buffers agree on the window count.
func (a *WindowArrays) Validate() error {
	if a.WindowLen <= 0 {
		return fmt.Errorf("window length must be > 0, got %d", a.WindowLen)
	}
	if len(a.Windows) != a.Count*a.windowSize() {
		return fmt.Errorf("windows size mismatch: got %d expected %d", len(a.Windows), a.Count*a.windowSize())
	}
	if len(a.Masks) != a.Count*a.maskSize() {
		return fmt.Errorf("masks size mismatch: got %d expected %d", len(a.Masks), a.Count*a.maskSize())
	}
	if len(a.Labels) != a.Count*a.WindowLen {
		return fmt.Errorf("labels size mismatch: got %d expected %d", len(a.Labels), a.Count*a.WindowLen)
	}
	return nil
}

// SegmentSubject slices one subject into framed windows with no overlap and
// no data loss. The last window is zero padded when the subject length is not
// a multiple of windowLen. A subject shorter than windowLen produces a single
// window carrying both the start and the end marker.
func SegmentSubject(s SubjectSequence, windowLen int) (*WindowArrays, error) {
	out := NewWindowArrays(windowLen)
	if err := segmentInto(out, s); err != nil {
		return nil, err
	}
	return out, nil
}

func segmentInto(dst *WindowArrays, s SubjectSequence) error {
	windowLen := dst.WindowLen
	if windowLen <= 0 {
		return fmt.Errorf("window length must be > 0, got %d", windowLen)
	}
	if len(s.Rows) != len(s.Labels) {
		return fmt.Errorf("subject %s: %d rows but %d labels", s.Name, len(s.Rows), len(s.Labels))
	}

	n := s.Len()
	if n == 0 {
		return nil
	}
	full, rem := n/windowLen, n%windowLen

	for i := range full {
		lo, hi := i*windowLen, (i+1)*windowLen
		isLast := i == full-1 && rem == 0
		dst.append(
			BuildFrame(s.Rows[lo:hi], windowLen, i == 0, isLast),
			BuildMask(windowLen, windowLen),
			s.Labels[lo:hi],
		)
	}

	if rem > 0 {
		labels := make([]int32, windowLen)
		copy(labels, s.Labels[n-rem:])
		dst.append(
			BuildFrame(s.Rows[n-rem:], windowLen, full == 0, true),
			BuildMask(windowLen, rem),
			labels,
		)
	}
	return nil
}

// Segment segments every subject and concatenates the results in
// subject-then-chunk order.
func Segment(subjects []SubjectSequence, windowLen int) (*WindowArrays, error) {
	return segment(subjects, windowLen, DefaultProgressInterval)
}

// segment is Segment with a progress log every interval; a non-positive
// interval logs after every subject.
func segment(subjects []SubjectSequence, windowLen int, interval time.Duration) (*WindowArrays, error) {
	if windowLen <= 0 {
		return nil, fmt.Errorf("window length must be > 0, got %d", windowLen)
	}

	total := 0
	for _, s := range subjects {
		total += (s.Len() + windowLen - 1) / windowLen
	}
	out := NewWindowArrays(windowLen)
	out.Windows = make([]float32, 0, total*out.windowSize())
	out.Masks = make([]float32, 0, total*out.maskSize())
	out.Labels = make([]int32, 0, total*windowLen)

	last := time.Now()
	for i, s := range subjects {
		if err := segmentInto(out, s); err != nil {
			return nil, err
		}
		if time.Since(last) >= interval {
			log.Printf("[Segment] progress: %d/%d subjects (%.1f%%)", i+1, len(subjects), 100*float64(i+1)/float64(len(subjects)))
			last = time.Now()
		}
	}
	log.Printf("[Segment] completed: %d subjects -> %d windows (window_len=%d)", len(subjects), out.Count, windowLen)
	return out, nil
}
