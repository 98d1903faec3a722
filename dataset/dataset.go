// Package dataset reads tabular regression datasets.
//
// Files are delimited text with a header row: tab separated for .tsv and
// comma separated for .csv, optionally compressed as .gz or .zst (for
// example "1027_ESL.tsv.gz", the PMLB layout). One column holds the label
// and every other column is a feature; every cell must parse as a float.
package dataset

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/regbench/pkg/errors"
)

// DefaultLabel is the PMLB label column name.
const DefaultLabel = "target"

// fallbackLabels are tried, in order, when the requested label is absent.
var fallbackLabels = []string{"class"}

// Dataset is a feature matrix with its label vector.
type Dataset struct {
	X            *mat.Dense
	Y            *mat.VecDense
	FeatureNames []string
	Label        string
}

// Dims returns the number of samples and features.
func (d *Dataset) Dims() (int, int) {
	return d.X.Dims()
}

type options struct {
	label     string
	delimiter rune
}

// Option configures Load.
type Option func(*options)

// WithLabel sets the label column name.
func WithLabel(name string) Option {
	return func(o *options) {
		o.label = name
	}
}

// WithDelimiter overrides the delimiter inferred from the file name.
func WithDelimiter(r rune) Option {
	return func(o *options) {
		o.delimiter = r
	}
}

// Load reads the dataset at path.
func Load(path string, opts ...Option) (*Dataset, error) {
	o := options{label: DefaultLabel}
	for _, opt := range opts {
		opt(&o)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open dataset %s", path)
	}
	defer f.Close()

	r, format, err := decompress(f, path)
	if err != nil {
		return nil, errors.Wrapf(err, "open dataset %s", path)
	}
	defer r.Close()

	if o.delimiter == 0 {
		o.delimiter = '\t'
		if format == ".csv" {
			o.delimiter = ','
		}
	}

	ds, err := Read(r, o.label, o.delimiter)
	if err != nil {
		return nil, errors.Wrapf(err, "read dataset %s", path)
	}
	return ds, nil
}

// decompress wraps f according to its compression suffix and returns the
// remaining extension (".tsv", ".csv" or "").
func decompress(f io.Reader, path string) (io.ReadCloser, string, error) {
	name := strings.ToLower(filepath.Base(path))
	ext := filepath.Ext(name)
	br := bufio.NewReader(f)

	switch ext {
	case ".gz":
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, "", err
		}
		return zr, filepath.Ext(strings.TrimSuffix(name, ext)), nil
	case ".zst":
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, "", err
		}
		return zr.IOReadCloser(), filepath.Ext(strings.TrimSuffix(name, ext)), nil
	default:
		return io.NopCloser(br), ext, nil
	}
}

// Read parses delimited text with a header row. label names the label
// column; when it is missing the fallback names are tried.
func Read(r io.Reader, label string, delimiter rune) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.NewModelError("dataset.Read", "missing header row", errors.ErrEmptyData)
	}
	if err != nil {
		return nil, errors.Wrap(err, "header")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	labelCol, err := findLabel(header, label)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(header))
	names := make([]string, 0, len(header)-1)
	for i, h := range header {
		if seen[h] {
			return nil, errors.NewValidationError("header", "duplicate column name", h)
		}
		seen[h] = true
		if i != labelCol {
			names = append(names, h)
		}
	}
	if len(names) == 0 {
		return nil, errors.NewValidationError("header", "no feature columns", strings.Join(header, ","))
	}

	var data, labels []float64
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		for i, cell := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d, column %q", line, header[i])
			}
			if i == labelCol {
				labels = append(labels, v)
			} else {
				data = append(data, v)
			}
		}
	}

	if len(labels) == 0 {
		return nil, errors.NewModelError("dataset.Read", "no data rows", errors.ErrEmptyData)
	}

	return &Dataset{
		X:            mat.NewDense(len(labels), len(names), data),
		Y:            mat.NewVecDense(len(labels), labels),
		FeatureNames: names,
		Label:        header[labelCol],
	}, nil
}

func findLabel(header []string, label string) (int, error) {
	for _, name := range append([]string{label}, fallbackLabels...) {
		for i, h := range header {
			if h == name {
				return i, nil
			}
		}
	}
	return -1, errors.NewValidationError("label", "column not found in header", label)
}
