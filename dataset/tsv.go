package dataset

import (
	"encoding/csv"
	"errors"
	"io"
)

// TSVWriter writes one example per line: id, sentence, program, and derivation separated by tabs.
type TSVWriter struct {
	w *csv.Writer
}

func NewTSVWriter(w io.Writer) *TSVWriter {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	return &TSVWriter{cw}
}

func (tw *TSVWriter) Write(ex *Example) error {
	e := tw.w.Write([]string{ex.ID, ex.Sentence, ex.Program, ex.Derivation})
	if e != nil {
		return writeError(ex.ID, e)
	}
	return nil
}

// Close flushes buffered lines; the underlying writer is not closed.
func (tw *TSVWriter) Close() error {
	tw.w.Flush()
	e := tw.w.Error()
	if e != nil {
		return closeError(e)
	}
	return nil
}

// ReadTSV reads examples written by TSVWriter. Example depths are not stored and are left zero.
func ReadTSV(r io.Reader) ([]*Example, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = 4

	var result []*Example
	for {
		record, e := cr.Read()
		if errors.Is(e, io.EOF) {
			return result, nil
		}
		if e != nil {
			line := 0
			var pe *csv.ParseError
			if errors.As(e, &pe) {
				line = pe.Line
			}
			return nil, readError(line, e.Error())
		}

		result = append(result, &Example{ID: record[0], Sentence: record[1], Program: record[2], Derivation: record[3]})
	}
}
