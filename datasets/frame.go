package datasets

// Marker row values. A marker row fills every channel with the same value.
const (
	MarkerStart    float32 = 1
	MarkerEnd      float32 = -1
	MarkerContinue float32 = 2
)

// FrameLen is the number of rows of a framed window: windowLen data rows
// between two marker rows.
func FrameLen(windowLen int) int { return windowLen + 2 }

// BuildFrame converts up to windowLen rows into a framed window of
// FrameLen(windowLen) rows, flattened row-major with Channels values per row.
//
// Row 0 is the start marker when isFirst, otherwise a continuation marker.
// The last row is the end marker when isLast and the chunk is full. A chunk
// shorter than windowLen is zero padded and always closes with the end
// marker, since a padded chunk is the last one of its subject.
func BuildFrame(chunk [][Channels]float32, windowLen int, isFirst, isLast bool) []float32 {
	out := make([]float32, FrameLen(windowLen)*Channels)

	first := MarkerContinue
	if isFirst {
		first = MarkerStart
	}
	fillRow(out, 0, first)

	n := min(len(chunk), windowLen)
	for i := range n {
		copy(out[(i+1)*Channels:], chunk[i][:])
	}

	last := MarkerContinue
	if isLast || n < windowLen {
		last = MarkerEnd
	}
	fillRow(out, windowLen+1, last)
	return out
}

func fillRow(frame []float32, row int, v float32) {
	for c := range Channels {
		frame[row*Channels+c] = v
	}
}
