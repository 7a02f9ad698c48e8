package datasets

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func makeSubject(name string, n int) SubjectSequence {
	labels := make([]int32, n)
	for i := range labels {
		labels[i] = int32(i % NumLabels)
	}
	return SubjectSequence{Name: name, Rows: rowsOf(n), Labels: labels}
}

func isMarker(row []float32, v float32) bool {
	for _, x := range row {
		if x != v {
			return false
		}
	}
	return true
}

// validRows counts the data positions the mask keeps for window w.
func validRows(a *WindowArrays, w int) int {
	side := FrameLen(a.WindowLen)
	mask := a.Mask(w)
	n := 0
	for j := 1; j <= a.WindowLen; j++ {
		if mask[j*side+j] == 1 {
			n++
		}
	}
	return n
}

func TestSegmentSubject_Scenario(t *testing.T) {
	s := SubjectSequence{
		Name:   "s1",
		Rows:   rowsOf(5),
		Labels: []int32{0, 1, 2, 3, 0},
	}
	a, err := SegmentSubject(s, 2)
	if err != nil {
		t.Fatalf("SegmentSubject failed: %v", err)
	}
	if a.Count != 3 {
		t.Fatalf("expected 3 windows, got %d", a.Count)
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	r := s.Rows
	wantWindows := [][]float32{
		{1, 1, 1, r[0][0], r[0][1], r[0][2], r[1][0], r[1][1], r[1][2], 2, 2, 2},
		{2, 2, 2, r[2][0], r[2][1], r[2][2], r[3][0], r[3][1], r[3][2], 2, 2, 2},
		{2, 2, 2, r[4][0], r[4][1], r[4][2], 0, 0, 0, -1, -1, -1},
	}
	for w, want := range wantWindows {
		if diff := cmp.Diff(want, a.Window(w)); diff != "" {
			t.Fatalf("window %d (-want +got):\n%s", w, diff)
		}
	}

	wantLabels := []int32{0, 1, 2, 3, 0, 0}
	if diff := cmp.Diff(wantLabels, a.Labels); diff != "" {
		t.Fatalf("labels (-want +got):\n%s", diff)
	}

	full := BuildMask(2, 2)
	for w := range 2 {
		if diff := cmp.Diff(full, a.Mask(w)); diff != "" {
			t.Fatalf("mask %d should be fully valid (-want +got):\n%s", w, diff)
		}
	}
	wantMask := []float32{
		1, 1, 0, 1,
		1, 1, 0, 1,
		0, 0, 0, 0,
		1, 1, 0, 1,
	}
	if diff := cmp.Diff(wantMask, a.Mask(2)); diff != "" {
		t.Fatalf("remainder mask (-want +got):\n%s", diff)
	}
}

func TestSegmentSubject_ShortSubjectIsFirstAndLast(t *testing.T) {
	a, err := SegmentSubject(makeSubject("short", 3), 5)
	if err != nil {
		t.Fatalf("SegmentSubject failed: %v", err)
	}
	if a.Count != 1 {
		t.Fatalf("expected 1 window, got %d", a.Count)
	}
	w := a.Window(0)
	if !isMarker(frameRow(w, 0), MarkerStart) {
		t.Fatalf("sole window must start with the start marker, got %v", frameRow(w, 0))
	}
	if !isMarker(frameRow(w, 6), MarkerEnd) {
		t.Fatalf("sole window must end with the end marker, got %v", frameRow(w, 6))
	}
	if got := validRows(a, 0); got != 3 {
		t.Fatalf("expected 3 valid rows, got %d", got)
	}
}

func TestSegmentSubject_ExactMultipleEndsOnFullWindow(t *testing.T) {
	a, err := SegmentSubject(makeSubject("exact", 6), 3)
	if err != nil {
		t.Fatalf("SegmentSubject failed: %v", err)
	}
	if a.Count != 2 {
		t.Fatalf("expected 2 windows, got %d", a.Count)
	}
	if !isMarker(frameRow(a.Window(1), 4), MarkerEnd) {
		t.Fatalf("last full window must carry the end marker, got %v", frameRow(a.Window(1), 4))
	}
	if !isMarker(frameRow(a.Window(0), 4), MarkerContinue) {
		t.Fatalf("first window must continue, got %v", frameRow(a.Window(0), 4))
	}
	for w := range a.Count {
		if validRows(a, w) != 3 {
			t.Fatalf("window %d should be fully valid", w)
		}
	}
}

func TestSegmentSubject_Empty(t *testing.T) {
	a, err := SegmentSubject(SubjectSequence{Name: "empty"}, 4)
	if err != nil {
		t.Fatalf("SegmentSubject failed: %v", err)
	}
	if a.Count != 0 || len(a.Windows) != 0 || len(a.Masks) != 0 || len(a.Labels) != 0 {
		t.Fatalf("expected no windows, got %d", a.Count)
	}
}

func TestSegmentSubject_Errors(t *testing.T) {
	if _, err := SegmentSubject(makeSubject("s", 4), 0); err == nil {
		t.Fatalf("expected error for window length 0")
	}
	bad := makeSubject("s", 4)
	bad.Labels = bad.Labels[:3]
	if _, err := SegmentSubject(bad, 2); err == nil {
		t.Fatalf("expected error for rows/labels length mismatch")
	}
}

// Every subject keeps all of its rows, starts exactly once in its first window
// and ends exactly once in its last window.
func TestSegment_CoverageAndMarkers(t *testing.T) {
	lengths := []int{0, 1, 4, 7, 8, 13, 16}
	subjects := make([]SubjectSequence, len(lengths))
	for i, n := range lengths {
		subjects[i] = makeSubject(fmt.Sprintf("s%d", i), n)
	}

	for _, windowLen := range []int{1, 2, 4, 5} {
		t.Run(fmt.Sprintf("len_%d", windowLen), func(t *testing.T) {
			a, err := Segment(subjects, windowLen)
			if err != nil {
				t.Fatalf("Segment failed: %v", err)
			}
			if err := a.Validate(); err != nil {
				t.Fatalf("Validate failed: %v", err)
			}

			w := 0
			for _, s := range subjects {
				count := (s.Len() + windowLen - 1) / windowLen
				rows := 0
				starts, ends := 0, 0
				for k := range count {
					window := a.Window(w + k)
					if isMarker(frameRow(window, 0), MarkerStart) {
						starts++
						if k != 0 {
							t.Fatalf("%s: start marker in window %d", s.Name, k)
						}
					}
					if isMarker(frameRow(window, windowLen+1), MarkerEnd) {
						ends++
						if k != count-1 {
							t.Fatalf("%s: end marker in window %d", s.Name, k)
						}
					}
					valid := validRows(a, w+k)
					for j := range valid {
						if diff := cmp.Diff(s.Rows[k*windowLen+j][:], frameRow(window, j+1)); diff != "" {
							t.Fatalf("%s: window %d row %d (-want +got):\n%s", s.Name, k, j, diff)
						}
						if got := a.LabelSeq(w + k)[j]; got != s.Labels[k*windowLen+j] {
							t.Fatalf("%s: window %d label %d = %d want %d", s.Name, k, j, got, s.Labels[k*windowLen+j])
						}
					}
					if k < count-1 && valid != windowLen {
						t.Fatalf("%s: full window %d has %d valid rows", s.Name, k, valid)
					}
					rows += valid
				}
				if rows != s.Len() {
					t.Fatalf("%s: windows cover %d rows, want %d", s.Name, rows, s.Len())
				}
				if count > 0 && (starts != 1 || ends != 1) {
					t.Fatalf("%s: got %d start and %d end markers", s.Name, starts, ends)
				}
				w += count
			}
			if w != a.Count {
				t.Fatalf("expected %d windows, got %d", w, a.Count)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	s := SubjectSequence{Name: "s1", Rows: rowsOf(5), Labels: []int32{0, 1, 2, 3, 0}}
	a, err := Segment([]SubjectSequence{s, makeSubject("s2", 4)}, 2)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	got := Summarize(a)
	want := Summary{
		WindowLen:        2,
		Windows:          5,
		RemainderWindows: 1,
		ValidPositions:   9,
		PaddedPositions:  1,
		LabelCounts:      [NumLabels]int{3, 2, 2, 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Summarize (-want +got):\n%s", diff)
	}
}

func TestSegment_ProgressInterval(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	subjects := []SubjectSequence{makeSubject("s1", 5), makeSubject("s2", 3), makeSubject("s3", 4)}
	got, err := segment(subjects, 2, -1)
	if err != nil {
		t.Fatalf("segment failed: %v", err)
	}
	if n := strings.Count(buf.String(), "[Segment] progress"); n != len(subjects) {
		t.Fatalf("expected a progress line per subject, got %d:\n%s", n, buf.String())
	}

	buf.Reset()
	want, err := segment(subjects, 2, time.Hour)
	if err != nil {
		t.Fatalf("segment failed: %v", err)
	}
	if strings.Contains(buf.String(), "[Segment] progress") {
		t.Fatalf("expected no progress lines within the interval:\n%s", buf.String())
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("interval changed the output (-want +got):\n%s", diff)
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{}.WithDefaults()
	if cfg.WindowLen != DefaultWindowLen || cfg.CacheDir != "./files" || cfg.BatchSize != 32 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ProgressInterval != DefaultProgressInterval {
		t.Fatalf("expected default progress interval, got %v", cfg.ProgressInterval)
	}
	if got := (Config{ProgressInterval: time.Minute}).WithDefaults().ProgressInterval; got != time.Minute {
		t.Fatalf("explicit progress interval overwritten: %v", got)
	}
}
