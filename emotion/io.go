package emotion

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/korean"
)

// TextLineColumn is the column created when reading plain text files.
const TextLineColumn = "텍스트"

const utf8BOM = "\ufeff"

// ReadTable loads a CSV, TSV, XLSX or plain text file. Empty cells become
// missing values and columns whose values are all numeric become float64.
func ReadTable(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readDelimited(path, ',')
	case ".tsv":
		return readDelimited(path, '\t')
	case ".xlsx", ".xlsm":
		return readWorkbook(path)
	default:
		return readLines(path)
	}
}

func readDelimited(path string, comma rune) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	data, err = decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(rows) == 0 {
		return nil, errors.New("empty file")
	}
	return buildTable(rows), nil
}

// decodeText strips a UTF-8 BOM, falling back to CP949 (EUC-KR) when the
// bytes are not valid UTF-8.
func decodeText(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, []byte(utf8BOM))
	if utf8.Valid(data) {
		return data, nil
	}
	decoded, err := korean.EUCKR.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("cp949 fallback: %w", err)
	}
	return decoded, nil
}

func readWorkbook(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, errors.New("empty sheet")
	}
	return buildTable(rows), nil
}

func readLines(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open text file: %w", err)
	}
	data, err = decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("decode text file: %w", err)
	}
	t := NewTable(TextLineColumn)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)
	for scanner.Scan() {
		line := cleanCell(scanner.Text())
		if line == "" {
			continue
		}
		t.AppendRow(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan text file: %w", err)
	}
	return t, nil
}

func buildTable(rows [][]string) *Table {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	header := make([]string, width)
	seen := make(map[string]int, width)
	for i := range header {
		name := ""
		if i < len(rows[0]) {
			name = cleanCell(rows[0][i])
		}
		if name == "" {
			name = fmt.Sprintf("#%d", i+1)
		}
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n)
		} else {
			seen[name] = 1
		}
		header[i] = name
	}
	t := NewTable(header...)
	for _, raw := range rows[1:] {
		row := make([]any, width)
		for i := 0; i < width && i < len(raw); i++ {
			if v := cleanCell(raw[i]); v != "" {
				row[i] = v
			}
		}
		t.Rows = append(t.Rows, row)
	}
	inferNumericColumns(t)
	return t
}

func inferNumericColumns(t *Table) {
	for col := range t.Columns {
		numeric, present := true, 0
		for _, row := range t.Rows {
			s, ok := row[col].(string)
			if !ok {
				continue
			}
			present++
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				numeric = false
				break
			}
		}
		if !numeric || present == 0 {
			continue
		}
		for _, row := range t.Rows {
			if s, ok := row[col].(string); ok {
				row[col], _ = strconv.ParseFloat(s, 64)
			}
		}
	}
}

// WriteCSV writes t as UTF-8 CSV with a BOM so spreadsheet tools detect the
// encoding of Korean text.
func WriteCSV(path string, t *Table) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create result file: %w", err)
	}
	if err := writeCSV(f, t); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close result file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename result file: %w", err)
	}
	return nil
}

func writeCSV(f *os.File, t *Table) error {
	if _, err := f.WriteString(utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	writer := csv.NewWriter(f)
	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(t.Columns))
	for i := range t.Rows {
		for j := range t.Columns {
			record[j] = FormatValue(t.Value(i, j))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush result: %w", err)
	}
	return nil
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, utf8BOM)
	return v
}
