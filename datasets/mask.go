package datasets

// BuildMask returns the attention mask of one window as a flattened
// FrameLen(windowLen) x FrameLen(windowLen) matrix of 0/1 values.
//
// valid is the number of real data rows in the window. When it is below
// windowLen, rows and columns 1+valid..windowLen (the padded interior) are
// zeroed. Marker rows and columns stay valid.
func BuildMask(windowLen, valid int) []float32 {
	side := FrameLen(windowLen)
	mask := make([]float32, side*side)
	for i := range mask {
		mask[i] = 1
	}
	valid = max(valid, 0)
	if valid >= windowLen {
		return mask
	}

	padded := func(i int) bool { return i >= 1+valid && i <= windowLen }
	for r := range side {
		for c := range side {
			if padded(r) || padded(c) {
				mask[r*side+c] = 0
			}
		}
	}
	return mask
}
