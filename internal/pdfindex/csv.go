package pdfindex

import (
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/auditops/popaudit/internal/model"
)

// WriteIndexCSV writes the invoice index table. The file is written whole
// and renamed into place so a cancelled run never leaves a half-written
// table behind.
func WriteIndexCSV(path string, records []model.InvoiceRecord) error {
	data, err := csvutil.Marshal(records)
	if err != nil {
		return eris.Wrap(err, "pdfindex: marshal index")
	}

	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "pdfindex: mkdir for %s", path)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return eris.Wrapf(err, "pdfindex: write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return eris.Wrapf(err, "pdfindex: rename into %s", path)
	}
	return nil
}

// ReadIndexCSV loads an invoice index table previously written by
// WriteIndexCSV.
func ReadIndexCSV(path string) ([]model.InvoiceRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pdfindex: read %s", path)
	}

	var records []model.InvoiceRecord
	if err := csvutil.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrapf(err, "pdfindex: decode %s", path)
	}
	return records, nil
}
