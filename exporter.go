package gopreint

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Exporter defines an export interface for aggregation windows.
type Exporter interface {
	Write(*Aggregator) error
	Close() error
}

// CSVExporter writes the running tangent state with ±2σ bounds, one row per
// integrated sample.
type CSVExporter struct {
	delimiter string
	hdlr      *os.File
}

// tangentHeaders are the nine components of the aggregated increment.
var tangentHeaders = []string{"dRx", "dRy", "dRz", "dPx", "dPy", "dPz", "dVx", "dVy", "dVz"}

// NewCSVExporter initializes a new CSV export.
func NewCSVExporter(dirpath, filename string) (e *CSVExporter, err error) {
	f, err := os.Create(filepath.Join(dirpath, filename))
	if err != nil {
		return
	}
	delimiter := ","
	hdr := make([]string, 0, 1+len(tangentHeaders)*3)
	hdr = append(hdr, "t")
	for _, h := range tangentHeaders {
		hdr = append(hdr, h, h+"+2s", h+"-2s")
	}
	f.WriteString(fmt.Sprintf("# Creation date (UTC): %s\n%s\n", time.Now().UTC(), strings.Join(hdr, delimiter)))
	e = &CSVExporter{delimiter, f}
	return
}

// Write writes the current window state to the CSV file.
func (e CSVExporter) Write(ag *Aggregator) error {
	ζ := ag.Zeta()
	cov := ag.Covariance()
	vals := make([]string, 0, 1+len(ζ)*3)
	vals = append(vals, fmt.Sprintf("%f", ag.DeltaT()))
	for i := 0; i < len(ζ); i++ {
		bound := 2 * math.Sqrt(cov.At(i, i))
		vals = append(vals, fmt.Sprintf("%f", ζ[i]), fmt.Sprintf("%f", bound), fmt.Sprintf("%f", -bound))
	}
	_, err := e.hdlr.WriteString(strings.Join(vals, e.delimiter) + "\n")
	return err
}

// WriteRawLn writes a raw line to the CSV file.
func (e CSVExporter) WriteRawLn(s string) error {
	_, err := e.hdlr.WriteString(s + "\n")
	return err
}

// Close closes the file.
func (e CSVExporter) Close() (err error) {
	err = e.WriteRawLn(fmt.Sprintf("# Closing date (UTC): %s", time.Now().UTC()))
	if err != nil {
		return
	}
	return e.hdlr.Close()
}
