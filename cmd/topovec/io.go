package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/topovec/codec"
	"github.com/hupe1980/topovec/diagram"
)

// readBatch decodes a JSON array of diagrams, each an array of
// [birth, death, dimension] triples. The path "-" reads stdin.
func readBatch(path string, stdin io.Reader) (diagram.Batch, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return decodeBatch(data)
}

func decodeBatch(data []byte) (diagram.Batch, error) {
	var raw [][][3]float64
	if err := codec.Default.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode diagrams: %w", err)
	}
	b := make(diagram.Batch, len(raw))
	for i, rows := range raw {
		for j, r := range rows {
			if r[2] != math.Trunc(r[2]) {
				return nil, fmt.Errorf("%w: diagram %d, point %d has non-integer dimension %g",
					diagram.ErrInvalidDiagram, i, j, r[2])
			}
		}
		b[i] = diagram.FromTriples(rows)
	}
	return b, nil
}

// writeCSV writes one row per sample with a header naming each column.
func writeCSV(w io.Writer, header []string, m *mat.Dense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	r, c := m.Dims()
	rec := make([]string, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			rec[j] = strconv.FormatFloat(m.At(i, j), 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
