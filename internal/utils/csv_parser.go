package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"taxfree-engine/internal/models"
)

// CSVParser errors
var (
	ErrEmptyCSV       = errors.New("CSV content is empty")
	ErrMissingColumns = errors.New("missing required columns")
	ErrNoDataRows     = errors.New("CSV file contains no data rows")
)

// RequiredColumns defines the columns that must be present in the CSV.
var RequiredColumns = []string{
	"industry",
	"tax_status",
	"revenue",
	"business_age",
}

// ColumnAliases maps alternative column names to standard names.
var ColumnAliases = map[string]string{
	// industry aliases
	"업종":            "industry",
	"business_type": "industry",
	"businesstype":  "industry",
	"category":      "industry",

	// tax_status aliases
	"taxstatus":  "tax_status",
	"tax status": "tax_status",
	"과세유형":       "tax_status",
	"사업자유형":      "tax_status",

	// revenue aliases
	"매출":             "revenue",
	"연매출":            "revenue",
	"annual_revenue": "revenue",
	"annualrevenue":  "revenue",
	"sales":          "revenue",

	// employee_count aliases
	"employeecount":  "employee_count",
	"employees":      "employee_count",
	"employee count": "employee_count",
	"직원수":            "employee_count",
	"직원 수":           "employee_count",

	// business_age aliases
	"businessage": "business_age",
	"age":         "business_age",
	"업력":          "business_age",
	"사업기간":        "business_age",

	// bookkeeping aliases
	"장부":         "bookkeeping",
	"기장":         "bookkeeping",
	"bookkeeper": "bookkeeping",

	// interest_area aliases
	"interestarea": "interest_area",
	"interest":     "interest_area",
	"관심분야":         "interest_area",

	// email aliases
	"email_address": "email",
	"emailaddress":  "email",
	"mail":          "email",
	"이메일":           "email",
}

// CSVRow is one questionnaire read from a batch file.
type CSVRow struct {
	Line    int
	Answers models.DiagnosisAnswers
	Email   string
}

// CSVParser handles parsing of questionnaire CSV files.
type CSVParser struct {
	columnMapping map[string]int
}

// NewCSVParser creates a new CSV parser instance.
func NewCSVParser() *CSVParser {
	return &CSVParser{
		columnMapping: make(map[string]int),
	}
}

// ParseAnswers parses CSV content into validated questionnaires. Rows that fail are
// reported as "line N: ..." errors and skipped.
func (p *CSVParser) ParseAnswers(content string) ([]*CSVRow, []error) {
	if strings.TrimSpace(content) == "" {
		return nil, []error{ErrEmptyCSV}
	}

	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(content, "\uFEFF")))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read header: %w", err)}
	}

	if err := p.buildColumnMapping(header); err != nil {
		return nil, []error{err}
	}

	var rows []*CSVRow
	var parseErrors []error

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// *csv.ParseError already carries its line
			parseErrors = append(parseErrors, err)
			continue
		}
		// the reader skips blank lines, so ask it for the physical line
		lineNum, _ := reader.FieldPos(0)
		if isBlank(record) {
			continue
		}

		row, err := p.parseRow(record)
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}
		row.Line = lineNum
		rows = append(rows, row)
	}

	if len(rows) == 0 && len(parseErrors) > 0 {
		return nil, append([]error{ErrNoDataRows}, parseErrors...)
	}

	return rows, parseErrors
}

func (p *CSVParser) buildColumnMapping(header []string) error {
	p.columnMapping = make(map[string]int)

	for i, col := range header {
		normalized := normalizeColumn(col)
		p.columnMapping[normalized] = i
	}

	var missing []string
	for _, required := range RequiredColumns {
		if _, ok := p.columnMapping[required]; !ok {
			missing = append(missing, required)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return nil
}

func (p *CSVParser) parseRow(record []string) (*CSVRow, error) {
	// optional columns read as empty
	getValue := func(column string) string {
		idx, ok := p.columnMapping[column]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	revenue := getValue("revenue")
	if revenue == "" {
		return nil, errors.New("revenue is empty")
	}

	employees := getValue("employee_count")
	if employees == "" {
		employees = "0"
	}

	answers := models.DiagnosisAnswers{
		Industry:      models.NormalizeIndustry(getValue("industry")),
		TaxStatus:     models.NormalizeTaxStatus(getValue("tax_status")),
		Revenue:       numericCell(revenue),
		EmployeeCount: numericCell(employees),
		BusinessAge:   models.NormalizeBusinessAge(getValue("business_age")),
		Bookkeeping:   models.NormalizeBookkeeping(getValue("bookkeeping")),
		InterestArea:  models.NormalizeInterestArea(getValue("interest_area")),
	}

	if err := models.ValidateAnswers(&answers); err != nil {
		return nil, err
	}

	email := getValue("email")
	if email != "" {
		if err := models.ValidateEmail(email); err != nil {
			return nil, err
		}
	}

	return &CSVRow{Answers: answers, Email: email}, nil
}

// numericCell keeps plain numbers numeric and legacy encodings ("1.5억", "1-4") as text.
func numericCell(s string) models.NumericInput {
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return models.NumberInput(f)
	}
	return models.TextInput(s)
}

func normalizeColumn(col string) string {
	normalized := strings.ToLower(strings.TrimSpace(col))
	if alias, ok := ColumnAliases[normalized]; ok {
		return alias
	}
	return normalized
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// ValidateCSVStructure performs a quick validation of CSV structure without full parsing.
func ValidateCSVStructure(content string) (*CSVValidationResult, error) {
	result := &CSVValidationResult{
		Columns:        []string{},
		MissingColumns: []string{},
		Errors:         []string{},
	}

	if strings.TrimSpace(content) == "" {
		result.Errors = append(result.Errors, "empty file")
		return result, nil
	}

	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(content, "\uFEFF")))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to read header: %v", err))
		return result, nil
	}

	normalizedColumns := make(map[string]bool)
	for _, col := range header {
		normalizedColumns[normalizeColumn(col)] = true
		result.Columns = append(result.Columns, col)
	}

	for _, required := range RequiredColumns {
		if !normalizedColumns[required] {
			result.MissingColumns = append(result.MissingColumns, required)
		}
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row error: %v", err))
			continue
		}
		if !isBlank(record) {
			result.RowCount++
		}
	}

	result.Valid = len(result.MissingColumns) == 0 && result.RowCount > 0

	return result, nil
}

// CSVValidationResult contains the results of CSV validation.
type CSVValidationResult struct {
	Valid          bool     `json:"valid"`
	RowCount       int      `json:"row_count"`
	Columns        []string `json:"columns"`
	MissingColumns []string `json:"missing_columns"`
	Errors         []string `json:"errors"`
}
