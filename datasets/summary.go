package datasets

// Summary describes prepared arrays.
type Summary struct {
	WindowLen int
	Windows   int

	// RemainderWindows counts windows with a padded tail.
	RemainderWindows int

	// ValidPositions and PaddedPositions count label positions, split by
	// the mask diagonal.
	ValidPositions  int
	PaddedPositions int

	// LabelCounts counts label ids over valid positions only.
	LabelCounts [NumLabels]int
}

// Summarize counts windows and labels. The mask, not the label value,
// decides whether a position is real data.
func Summarize(a *WindowArrays) Summary {
	s := Summary{WindowLen: a.WindowLen, Windows: a.Count}
	side := FrameLen(a.WindowLen)
	for w := range a.Count {
		mask := a.Mask(w)
		labels := a.LabelSeq(w)
		padded := false
		for j, id := range labels {
			if mask[(j+1)*side+j+1] == 0 {
				s.PaddedPositions++
				padded = true
				continue
			}
			s.ValidPositions++
			if id >= 0 && id < NumLabels {
				s.LabelCounts[id]++
			}
		}
		if padded {
			s.RemainderWindows++
		}
	}
	return s
}
