// ABOUTME: Tabular import normalization for CSV and XLSX uploads
// ABOUTME: Parses raw bytes, maps columns onto canonical field names and validates rows
package importer

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// xlsxBase64Prefix is how a base64 encoded zip local file header begins.
const xlsxBase64Prefix = "UEsDBBQAAAAI"

var (
	headerSeparators = regexp.MustCompile(`[_\-\s]+`)
	emailPattern     = regexp.MustCompile(`^[^\s@]+@[^\s@]+$`)
)

// ParseError reports data that could not be decoded into rows.
type ParseError struct {
	Details []string
}

func (e *ParseError) Error() string {
	return "Failed to parse CSV"
}

// Table is a decoded upload: the header row plus one value map per data row,
// keyed by the raw header text.
type Table struct {
	Headers []string
	Records []map[string]string
	// Lines holds the source line each record starts on.
	Lines []int
}

// Row is a data row after column mapping. Number is the 1-based line in the
// source file, counting the header as line 1.
type Row struct {
	Number int
	Fields map[string]string
}

// Get returns the value for a canonical field and whether the column exists.
func (r Row) Get(field string) (string, bool) {
	v, ok := r.Fields[NormalizeHeader(field)]
	return v, ok
}

// Value returns the trimmed value for field, or "" when absent.
func (r Row) Value(field string) string {
	v, _ := r.Get(field)
	return strings.TrimSpace(v)
}

// NormalizeHeader lower-cases and trims a header and drops separator runs.
func NormalizeHeader(h string) string {
	return headerSeparators.ReplaceAllString(strings.ToLower(strings.TrimSpace(h)), "")
}

// Parse decodes CSV text, an XLSX workbook, or either of those base64 encoded.
func Parse(data []byte) (*Table, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var (
		table *Table
		err   error
	)
	switch {
	case isZip(data):
		table, err = parseXLSX(data)
	default:
		if decoded, ok := decodeBase64(data); ok {
			if isZip(decoded) {
				table, err = parseXLSX(decoded)
				break
			}
			if utf8.Valid(decoded) && bytes.ContainsAny(decoded, ",\n") {
				table, err = parseCSV(decoded)
				break
			}
		}
		table, err = parseCSV(data)
	}
	if err != nil {
		return nil, &ParseError{Details: []string{err.Error()}}
	}
	if len(table.Headers) == 0 {
		return nil, &ParseError{Details: []string{"no header row found"}}
	}
	if len(table.Records) == 0 {
		return nil, &ParseError{Details: []string{"no data rows found"}}
	}
	return table, nil
}

func isZip(data []byte) bool {
	return len(data) >= 4 && data[0] == 'P' && data[1] == 'K'
}

// decodeBase64 decodes data when it is entirely standard base64.
func decodeBase64(data []byte) ([]byte, bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) < 4 {
		return nil, false
	}
	if !bytes.HasPrefix(trimmed, []byte(xlsxBase64Prefix)) && bytes.ContainsAny(trimmed, ", \n\t\"") {
		return nil, false
	}
	decoded, err := base64.StdEncoding.DecodeString(string(trimmed))
	if err != nil {
		return nil, false
	}
	return decoded, true
}

func parseCSV(data []byte) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	var (
		rows  [][]string
		lines []int
	)
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid CSV: %w", err)
		}
		line, _ := r.FieldPos(0)
		rows = append(rows, record)
		lines = append(lines, line)
	}
	return buildTable(rows, lines), nil
}

func parseXLSX(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	lines := make([]int, len(rows))
	for i := range rows {
		lines[i] = i + 1
	}
	return buildTable(rows, lines), nil
}

// buildTable treats the first non-blank row as the header and skips blank
// rows. lines[i] is the source line of rows[i].
func buildTable(rows [][]string, lines []int) *Table {
	table := &Table{}
	headerIdx := -1
	for i, row := range rows {
		if !isBlank(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return table
	}

	columns := make([]int, 0, len(rows[headerIdx]))
	for i, h := range rows[headerIdx] {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		table.Headers = append(table.Headers, h)
		columns = append(columns, i)
	}

	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		record := make(map[string]string, len(columns))
		for n, col := range columns {
			value := ""
			if col < len(row) {
				value = row[col]
			}
			header := table.Headers[n]
			if _, dup := record[header]; !dup {
				record[header] = value
			}
		}
		table.Records = append(table.Records, record)
		table.Lines = append(table.Lines, lines[i])
	}
	return table
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Apply maps every record onto canonical field names. For each column the
// first match wins: the raw header as a mapping key, the normalized header
// as a mapping key, a known synonym, then the normalized header itself.
func (t *Table) Apply(mapping map[string]string) []Row {
	normalized := make(map[string]string, len(mapping))
	for col, target := range mapping {
		if target = NormalizeHeader(target); target != "" {
			normalized[NormalizeHeader(col)] = target
		}
	}

	targets := make(map[string]string, len(t.Headers))
	for _, h := range t.Headers {
		targets[h] = resolveColumn(h, mapping, normalized)
	}

	rows := make([]Row, 0, len(t.Records))
	for i, record := range t.Records {
		fields := make(map[string]string, len(record))
		for _, h := range t.Headers {
			target := targets[h]
			if _, taken := fields[target]; taken && record[h] == "" {
				continue
			}
			fields[target] = record[h]
		}
		rows = append(rows, Row{Number: t.line(i), Fields: fields})
	}
	return rows
}

// line returns the source line of record i, assuming one line per record
// after the header when the table carries no line information.
func (t *Table) line(i int) int {
	if len(t.Lines) == len(t.Records) {
		return t.Lines[i]
	}
	return i + 2
}

func resolveColumn(header string, mapping, normalized map[string]string) string {
	if target := NormalizeHeader(mapping[header]); target != "" {
		return target
	}
	key := NormalizeHeader(header)
	if target, ok := normalized[key]; ok {
		return target
	}
	switch {
	case key == "careerpage" || strings.Contains(key, "career"):
		return "careerpageurl"
	case key == "companywebsite" || key == "websiteurl":
		return "website"
	}
	return key
}

// FieldRule describes the checks applied to one canonical field.
type FieldRule struct {
	Field     string
	Required  bool
	MaxLength int
	// Custom returns an error message, or "" when the value is acceptable.
	Custom func(value string) string
}

// RowError is a validation or import failure tied to a source row.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidateRow applies rules in order. A failed required check skips the
// remaining checks for that field.
func ValidateRow(row Row, rules []FieldRule) []RowError {
	var errs []RowError
	for _, rule := range rules {
		value, _ := row.Get(rule.Field)

		if rule.Required && strings.TrimSpace(value) == "" {
			errs = append(errs, RowError{Row: row.Number, Field: rule.Field, Message: rule.Field + " is required"})
			continue
		}
		if value == "" {
			continue
		}
		if rule.MaxLength > 0 && utf8.RuneCountInString(value) > rule.MaxLength {
			errs = append(errs, RowError{
				Row:     row.Number,
				Field:   rule.Field,
				Message: fmt.Sprintf("%s exceeds maximum length of %d", rule.Field, rule.MaxLength),
			})
		}
		if rule.Custom != nil {
			if msg := rule.Custom(value); msg != "" {
				errs = append(errs, RowError{Row: row.Number, Field: rule.Field, Message: msg})
			}
		}
	}
	return errs
}

func urlRule(message string) func(string) string {
	return func(v string) string {
		if !IsValidURL(v) {
			return message
		}
		return ""
	}
}

var CompanyRules = []FieldRule{
	{Field: "companyname", Required: true, MaxLength: 200},
	{Field: "country", Required: true, MaxLength: 100},
	{Field: "website", Custom: urlRule("Invalid website URL")},
	{Field: "careerpageurl", Custom: urlRule("Invalid career page URL")},
	{Field: "tags", MaxLength: 500},
	{Field: "notes", MaxLength: 2000},
}

var ContactRules = []FieldRule{
	{Field: "companyname", Required: true, MaxLength: 200},
	{Field: "name", Required: true, MaxLength: 100},
	{Field: "email", Required: true, MaxLength: 200, Custom: func(v string) string {
		if !IsValidEmail(v) {
			return "Invalid email format"
		}
		return ""
	}},
	{Field: "roletitle", MaxLength: 100},
	{Field: "linkedinurl", Custom: urlRule("Invalid LinkedIn URL")},
	{Field: "notes", MaxLength: 2000},
}

// IsValidEmail applies the permissive local@domain check.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsValidURL accepts blank values and URLs with or without an http(s) scheme.
func IsValidURL(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return true
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return false
	}
	return u.Host != "" && !strings.ContainsAny(u.Host, " \t")
}
