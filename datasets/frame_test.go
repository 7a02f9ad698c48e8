package datasets

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func rowsOf(n int) [][Channels]float32 {
	rows := make([][Channels]float32, n)
	for i := range rows {
		rows[i] = [Channels]float32{float32(i) + 0.25, -float32(i) - 0.5, 100 + float32(i)}
	}
	return rows
}

func markerRow(v float32) []float32 {
	return []float32{v, v, v}
}

func frameRow(frame []float32, row int) []float32 {
	return frame[row*Channels : (row+1)*Channels]
}

func TestBuildFrame_Markers(t *testing.T) {
	chunk := rowsOf(3)
	tests := []struct {
		name            string
		isFirst, isLast bool
		wantFirst       float32
		wantLast        float32
	}{
		{"middle", false, false, MarkerContinue, MarkerContinue},
		{"first", true, false, MarkerStart, MarkerContinue},
		{"last", false, true, MarkerContinue, MarkerEnd},
		{"only", true, true, MarkerStart, MarkerEnd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := BuildFrame(chunk, 3, tt.isFirst, tt.isLast)
			if len(frame) != FrameLen(3)*Channels {
				t.Fatalf("unexpected frame size %d", len(frame))
			}
			if diff := cmp.Diff(markerRow(tt.wantFirst), frameRow(frame, 0)); diff != "" {
				t.Fatalf("first marker (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(markerRow(tt.wantLast), frameRow(frame, 4)); diff != "" {
				t.Fatalf("last marker (-want +got):\n%s", diff)
			}
			for i := range chunk {
				if diff := cmp.Diff(chunk[i][:], frameRow(frame, i+1)); diff != "" {
					t.Fatalf("data row %d (-want +got):\n%s", i, diff)
				}
			}
		})
	}
}

func TestBuildFrame_PaddedChunkAlwaysEnds(t *testing.T) {
	chunk := rowsOf(2)
	frame := BuildFrame(chunk, 4, false, false)

	if diff := cmp.Diff(markerRow(MarkerContinue), frameRow(frame, 0)); diff != "" {
		t.Fatalf("first marker (-want +got):\n%s", diff)
	}
	for i := range chunk {
		if diff := cmp.Diff(chunk[i][:], frameRow(frame, i+1)); diff != "" {
			t.Fatalf("data row %d (-want +got):\n%s", i, diff)
		}
	}
	for _, row := range []int{3, 4} {
		if diff := cmp.Diff(markerRow(0), frameRow(frame, row)); diff != "" {
			t.Fatalf("padded row %d not zero (-want +got):\n%s", row, diff)
		}
	}
	if diff := cmp.Diff(markerRow(MarkerEnd), frameRow(frame, 5)); diff != "" {
		t.Fatalf("end marker (-want +got):\n%s", diff)
	}
}
