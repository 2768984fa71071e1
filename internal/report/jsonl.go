// Package report turns match verdicts and the invoice index into the audit
// artifacts: verdicts.jsonl, verdicts_summary.json, the top-mismatch table,
// the spreadsheet report and run_metadata.json. All writers are
// deterministic; rerunning on identical inputs reproduces identical bytes.
package report

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/auditops/popaudit/internal/model"
)

// WriteVerdictsJSONL writes one JSON object per verdict, in verdict order.
// The file is staged and renamed into place so readers never observe a
// half-written record.
func WriteVerdictsJSONL(path string, verdicts []model.MatchVerdict) error {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i := range verdicts {
		if err := enc.Encode(&verdicts[i]); err != nil {
			return eris.Wrapf(err, "report: encode verdict %s/%s", verdicts[i].Section, verdicts[i].PositionID)
		}
	}
	if err := w.Flush(); err != nil {
		return eris.Wrap(err, "report: flush verdicts")
	}
	return writeAtomic(path, buf.Bytes())
}

// ReadVerdictsJSONL parses a verdicts.jsonl file back into verdicts.
func ReadVerdictsJSONL(path string) ([]model.MatchVerdict, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "report: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	var verdicts []model.MatchVerdict
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(bytes.TrimSpace(scanner.Bytes())) == 0 {
			continue
		}
		var v model.MatchVerdict
		if err := json.Unmarshal(scanner.Bytes(), &v); err != nil {
			return nil, eris.Wrapf(err, "report: %s line %d", path, line)
		}
		verdicts = append(verdicts, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrapf(err, "report: scan %s", path)
	}
	return verdicts, nil
}

// WriteJSON writes v as indented JSON, atomically.
func WriteJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrapf(err, "report: encode %s", filepath.Base(path))
	}
	return writeAtomic(path, buf.Bytes())
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "report: mkdir for %s", path)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return eris.Wrapf(err, "report: write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return eris.Wrapf(err, "report: rename into %s", path)
	}
	return nil
}
