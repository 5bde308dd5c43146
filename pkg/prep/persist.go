package prep

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/leapprep/pkg/core"
)

// EncodersSuffix replaces the output file extension to name the encoder file.
const EncodersSuffix = "_encoders.json"

const writeBufSize = 1 << 20 // 1 MiB

// EncodersPath derives the encoder mapping path from the table output path:
// out/data.csv becomes out/data_encoders.json.
func EncodersPath(outputPath string) string {
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + EncodersSuffix
}

// ensureDir creates the parent directory of path.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return &core.IOError{Op: "mkdir", Path: dir, Err: err}
	}
	return nil
}

// WriteCSV writes the table with a header row and no index column. The file
// is overwritten.
func WriteCSV(path string, t *core.Table) (err error) {
	if err := ensureDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return &core.IOError{Op: "write", Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &core.IOError{Op: "write", Path: path, Err: cerr}
		}
	}()

	bw := bufio.NewWriterSize(f, writeBufSize)
	w := csv.NewWriter(bw)

	if err := w.Write(t.Names()); err != nil {
		return &core.IOError{Op: "write", Path: path, Err: err}
	}
	for i := 0; i < t.NumRows(); i++ {
		if err := w.Write(t.Record(i)); err != nil {
			return &core.IOError{Op: "write", Path: path, Err: err}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return &core.IOError{Op: "write", Path: path, Err: err}
	}
	if err := bw.Flush(); err != nil {
		return &core.IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// WriteEncoders writes the encoder mappings as a JSON object indented with two
// spaces. The file is overwritten.
func WriteEncoders(path string, set *EncoderSet) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return &core.IOError{Op: "write", Path: path, Err: err}
	}

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(set); err != nil {
		_ = f.Close()
		return &core.IOError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &core.IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}
