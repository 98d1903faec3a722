package benchmark

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/regbench/pkg/errors"
)

// suffixLen is the length of the ".tsv.gz" suffix of PMLB dataset files.
const suffixLen = 7

// DatasetName strips the directory and the last seven characters of the
// file name. Names of seven characters or fewer yield "".
func DatasetName(path string) string {
	base := filepath.Base(path)
	if len(base) <= suffixLen {
		return ""
	}
	return base[:len(base)-suffixLen]
}

// Stem returns {dir}/{dataset}_{estimator}_{seed}.
func Stem(dir, dataset, estimator string, seed int64) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s_%d", dataset, estimator, seed))
}

// writeJSON coerces v with Jsonify and writes it with a four-space indent.
func writeJSON(path string, v interface{}) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	if err := enc.Encode(Jsonify(v)); err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

// save writes {stem}.json and {stem}_cv_results.json.
func save(stem string, result *Result, cvResults map[string]interface{}) error {
	if err := os.MkdirAll(filepath.Dir(stem), 0o755); err != nil {
		return errors.Wrapf(err, "create results directory %s", filepath.Dir(stem))
	}

	result.ResultPath = stem + ".json"
	if err := writeJSON(result.ResultPath, result.Map()); err != nil {
		return err
	}

	trace := make(map[string]interface{}, len(cvResults)+1)
	for k, v := range cvResults {
		trace[k] = v
	}
	trace["random_state"] = result.RandomState

	result.CVResultsPath = stem + "_cv_results.json"
	return writeJSON(result.CVResultsPath, trace)
}

// ReadResult loads a record written by Evaluate.
func ReadResult(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return &r, nil
}
