package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
)

// table is a single append-only CSV file with a fixed header.
type table struct {
	path   string
	header []string
	// matches overrides exact header comparison when set.
	matches func([]string) bool
}

func (t table) headerOK(row []string) bool {
	if t.matches != nil {
		return t.matches(row)
	}
	return slices.Equal(row, t.header)
}

// check rejects an existing file whose first row is not the expected header.
func (t table) check() error {
	f, err := os.Open(t.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	first, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%s: read header: %w", t.path, err)
	}
	if !t.headerOK(first) {
		return fmt.Errorf("%s: unexpected header %v", t.path, first)
	}
	return nil
}

// rows returns every data row, skipping the header.
func (t table) rows() ([][]string, error) {
	f, err := os.Open(t.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(t.header)
	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.path, err)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all[1:], nil
}

// append writes row, emitting the header first when the file is empty.
// On failure the file is truncated back to its previous size.
func (t table) append(row []string) (err error) {
	f, err := os.OpenFile(t.path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	size := info.Size()

	w := csv.NewWriter(f)
	if size == 0 {
		if err := w.Write(t.header); err != nil {
			return err
		}
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	if err = w.Error(); err == nil {
		err = f.Sync()
	}
	if err != nil {
		if terr := f.Truncate(size); terr != nil {
			return errors.Join(err, fmt.Errorf("truncate %s: %w", t.path, terr))
		}
		return err
	}
	return nil
}
