package datasets

import (
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strconv"
	"strings"
)

// Channels is the number of raw acceleration channels kept per timestep
// (AccV, AccML, AccAP).
const Channels = 3

// Label ids. None is derived from the three indicator columns.
const (
	LabelStartHesitation int32 = iota
	LabelTurn
	LabelWalking
	LabelNone

	NumLabels = 4
)

// LabelNames maps a label id to its column name.
var LabelNames = [NumLabels]string{"StartHesitation", "Turn", "Walking", "None"}

// Protocol identifies the shape of a source directory.
type Protocol int

const (
	// ProtocolTdcsfog files are used as-is.
	ProtocolTdcsfog Protocol = iota
	// ProtocolDefog files carry a Task column; only rows with Task true are kept.
	ProtocolDefog
)

func (p Protocol) String() string {
	switch p {
	case ProtocolDefog:
		return "defog"
	case ProtocolTdcsfog:
		return "tdcsfog"
	default:
		return "protocol(" + strconv.Itoa(int(p)) + ")"
	}
}

var (
	accColumns       = []string{"accv", "accml", "accap"}
	indicatorColumns = []string{"starthesitation", "turn", "walking"}
)

// SubjectSequence is the time-ordered recording of one subject file after
// filtering and labeling.
type SubjectSequence struct {
	Name   string
	Rows   [][Channels]float32
	Labels []int32
}

// Len returns the number of timesteps.
func (s SubjectSequence) Len() int { return len(s.Rows) }

// Source produces subject sequences. The Segmenter never sees how they were
// read or filtered.
type Source interface {
	Subjects() ([]SubjectSequence, error)
}

// CSVSource reads every CSV file of a directory as one subject.
type CSVSource struct {
	Dir      string
	Protocol Protocol
}

// Subjects reads the files of the directory sequentially in lexical order.
func (c CSVSource) Subjects() ([]SubjectSequence, error) {
	paths, err := FindCSVInAssets(c.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingSourceData, err)
	}

	subjects := make([]SubjectSequence, 0, len(paths))
	for i, path := range paths {
		s, err := ReadSubjectCSV(path, c.Protocol)
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
		if (i+1)%100 == 0 {
			log.Printf("[Source] %s: read %d/%d files", c.Protocol, i+1, len(paths))
		}
	}
	log.Printf("[Source] %s: read %d subjects from %s", c.Protocol, len(subjects), c.Dir)
	return subjects, nil
}

// MultiSource concatenates the subjects of several sources in order.
type MultiSource []Source

// Subjects reads every source in order. An empty MultiSource returns
// ErrMissingSourceData.
func (m MultiSource) Subjects() ([]SubjectSequence, error) {
	if len(m) == 0 {
		return nil, fmt.Errorf("%w: no source directories configured", ErrMissingSourceData)
	}
	var all []SubjectSequence
	for _, src := range m {
		subjects, err := src.Subjects()
		if err != nil {
			return nil, err
		}
		all = append(all, subjects...)
	}
	return all, nil
}

// ReadSubjectCSV reads one subject file. Missing files or columns wrap
// ErrMissingSourceData; rows without exactly one active label wrap
// ErrLabelInvariant.
func ReadSubjectCSV(path string, protocol Protocol) (SubjectSequence, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	seq := SubjectSequence{Name: name}

	file, reader, colIndex, err := readHeader(path)
	if err != nil {
		return seq, fmt.Errorf("%w: %s: %v", ErrMissingSourceData, path, err)
	}
	defer file.Close()

	required := append([]string{"time"}, accColumns...)
	required = append(required, indicatorColumns...)
	if protocol == ProtocolDefog {
		required = append(required, "task")
	}
	for _, col := range required {
		if _, ok := colIndex[col]; !ok {
			return seq, fmt.Errorf("%w: %s: required column %q not found", ErrMissingSourceData, path, col)
		}
	}

	rowIdx := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return seq, fmt.Errorf("%w: %s: failed to read row %d: %v", ErrMissingSourceData, path, rowIdx, err)
		}
		rowIdx++

		if protocol == ProtocolDefog {
			active, err := strconv.ParseBool(strings.TrimSpace(record[colIndex["task"]]))
			if err != nil {
				return seq, fmt.Errorf("%w: %s: row %d: failed to parse Task: %v", ErrMissingSourceData, path, rowIdx, err)
			}
			if !active {
				continue
			}
		}

		var row [Channels]float32
		for i, col := range accColumns {
			v, err := parseFloat32(record[colIndex[col]])
			if err != nil {
				return seq, fmt.Errorf("%w: %s: row %d: failed to parse %s: %v", ErrMissingSourceData, path, rowIdx, col, err)
			}
			row[i] = v
		}

		var ind [3]float32
		for i, col := range indicatorColumns {
			v, err := parseFloat32(record[colIndex[col]])
			if err != nil {
				return seq, fmt.Errorf("%w: %s: row %d: failed to parse %s: %v", ErrMissingSourceData, path, rowIdx, col, err)
			}
			ind[i] = v
		}
		label, err := LabelFromIndicators(ind[0], ind[1], ind[2])
		if err != nil {
			return seq, fmt.Errorf("%s: row %d: %w", path, rowIdx, err)
		}

		seq.Rows = append(seq.Rows, row)
		seq.Labels = append(seq.Labels, label)
	}

	return seq, nil
}

// LabelFromIndicators derives the label id from the StartHesitation, Turn and
// Walking indicators. None is 1 minus their sum. All four must be 0 or 1, which
// leaves exactly one of them active.
func LabelFromIndicators(startHesitation, turn, walking float32) (int32, error) {
	ind := [NumLabels]float32{startHesitation, turn, walking, 1 - (startHesitation + turn + walking)}
	label := LabelNone
	for i, v := range ind {
		switch v {
		case 0:
		case 1:
			label = int32(i)
		default:
			return 0, fmt.Errorf("%w: indicator %s=%v in %v", ErrLabelInvariant, LabelNames[i], v, ind)
		}
	}
	return label, nil
}
