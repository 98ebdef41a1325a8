package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/Trawczynski/double-pendulum/internal/dynamo"
	"github.com/Trawczynski/double-pendulum/internal/sim"
)

// Columns is the header of states.csv and of CSV exports.
var Columns = []string{"step", "a1", "a2", "v1", "v2", "x1", "y1", "x2", "y2", "energy", "total", "lyapunov"}

// Number is a float64 that survives JSON even when it is NaN or infinite;
// those are written as the strings "NaN", "+Inf" and "-Inf".
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte(strconv.Quote(formatFloat(f))), nil
	}
	return []byte(formatFloat(f)), nil
}

func (n *Number) UnmarshalJSON(data []byte) error {
	s := string(data)
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("storage: invalid number %s", data)
	}
	*n = Number(f)
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// WriteCSV writes samples with the Columns header. Values are written at
// full precision so they read back unchanged.
func WriteCSV(w io.Writer, samples []sim.Sample) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return err
	}

	for _, s := range samples {
		if len(s.State) != 4 {
			return fmt.Errorf("%w: sample at step %d has %d variables", dynamo.ErrDimensionMismatch, s.Step, len(s.State))
		}
		row := []string{strconv.Itoa(s.Step)}
		for _, v := range []float64{
			s.State[0], s.State[1], s.State[2], s.State[3],
			s.X1, s.Y1, s.X2, s.Y2,
			s.Energy, s.Total, s.Lyapunov,
		} {
			row = append(row, formatFloat(v))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses what WriteCSV produced.
func ReadCSV(r io.Reader) ([]sim.Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Sample{}, nil
	}

	samples := make([]sim.Sample, 0, len(records)-1)
	for i, record := range records[1:] {
		line := i + 2
		if len(record) != len(Columns) {
			return nil, fmt.Errorf("%w: line %d has %d fields, want %d", dynamo.ErrDimensionMismatch, line, len(record), len(Columns))
		}

		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: step: %w", line, err)
		}

		vals := make([]float64, len(record)-1)
		for j, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, Columns[j+1], err)
			}
			vals[j] = v
		}

		samples = append(samples, sim.Sample{
			Step:     step,
			State:    dynamo.State{vals[0], vals[1], vals[2], vals[3]},
			X1:       vals[4],
			Y1:       vals[5],
			X2:       vals[6],
			Y2:       vals[7],
			Energy:   vals[8],
			Total:    vals[9],
			Lyapunov: vals[10],
		})
	}

	return samples, nil
}

type ExportSample struct {
	Step     int    `json:"step"`
	A1       Number `json:"a1"`
	A2       Number `json:"a2"`
	V1       Number `json:"v1"`
	V2       Number `json:"v2"`
	X1       Number `json:"x1"`
	Y1       Number `json:"y1"`
	X2       Number `json:"x2"`
	Y2       Number `json:"y2"`
	Energy   Number `json:"energy"`
	Total    Number `json:"total"`
	Lyapunov Number `json:"lyapunov"`
}

type ExportData struct {
	Run     *RunMetadata   `json:"run"`
	Samples []ExportSample `json:"samples"`
}

// ExportJSON writes a run and its samples as one indented document.
func ExportJSON(w io.Writer, meta *RunMetadata, samples []sim.Sample) error {
	data := ExportData{
		Run:     meta,
		Samples: make([]ExportSample, len(samples)),
	}

	for i, s := range samples {
		data.Samples[i] = ExportSample{
			Step: s.Step,
			A1:   Number(s.State[0]), A2: Number(s.State[1]),
			V1: Number(s.State[2]), V2: Number(s.State[3]),
			X1: Number(s.X1), Y1: Number(s.Y1),
			X2: Number(s.X2), Y2: Number(s.Y2),
			Energy:   Number(s.Energy),
			Total:    Number(s.Total),
			Lyapunov: Number(s.Lyapunov),
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
