package s0_data

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/lsequity/internal/contracts"
)

// CSVSource serves a factor table exported to a CSV file
// 헤더: security,<factor1>,<factor2>,... (빈 칸 / NaN / null / NA = 정의되지 않음)
type CSVSource struct {
	factorPath   string
	universePath string // 비어 있으면 팩터 파일의 모든 종목이 유니버스
}

// NewCSVSource creates a CSV-backed factor source
func NewCSVSource(factorPath, universePath string) *CSVSource {
	return &CSVSource{factorPath: factorPath, universePath: universePath}
}

// Universe returns the universe file contents, or every security of the factor file
func (s *CSVSource) Universe(ctx context.Context, date time.Time) (*contracts.Universe, error) {
	if s.universePath == "" {
		table, err := s.load(date)
		if err != nil {
			return nil, err
		}
		securities := make([]string, len(table.Records))
		for i, r := range table.Records {
			securities[i] = r.Security
		}
		return &contracts.Universe{Date: date, Securities: securities}, nil
	}

	f, err := os.Open(s.universePath)
	if err != nil {
		return nil, fmt.Errorf("open universe file: %w", err)
	}
	defer f.Close()

	securities, err := ReadUniverse(f)
	if err != nil {
		return nil, err
	}

	return &contracts.Universe{Date: date, Securities: securities}, nil
}

// FactorTable returns the requested factor columns of the file
// 파일에 없는 팩터는 모든 종목에서 정의되지 않음
func (s *CSVSource) FactorTable(ctx context.Context, date time.Time, factors []string) (*contracts.FactorTable, error) {
	table, err := s.load(date)
	if err != nil {
		return nil, err
	}
	table.Factors = factors
	return table, nil
}

func (s *CSVSource) load(date time.Time) (*contracts.FactorTable, error) {
	f, err := os.Open(s.factorPath)
	if err != nil {
		return nil, fmt.Errorf("open factor file: %w", err)
	}
	defer f.Close()

	return ReadFactorTable(f, date)
}

// ReadFactorTable parses a factor CSV
func ReadFactorTable(r io.Reader, date time.Time) (*contracts.FactorTable, error) {
	header, rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	factors := header[1:]
	table := &contracts.FactorTable{
		Date:    date,
		Factors: factors,
		Records: make([]contracts.FactorRecord, 0, len(rows)),
	}

	seen := make(map[string]int, len(rows))
	for i, row := range rows {
		line := i + 2
		security := strings.TrimSpace(row[0])
		if security == "" {
			return nil, fmt.Errorf("line %d: empty security", line)
		}
		if prev, dup := seen[security]; dup {
			return nil, fmt.Errorf("line %d: duplicate security %s (first on line %d)", line, security, prev)
		}
		seen[security] = line

		values := make(map[string]*float64, len(factors))
		for j, factor := range factors {
			v, defined, err := parseCell(row[j+1])
			if err != nil {
				return nil, fmt.Errorf("line %d, column %s: %w", line, factor, err)
			}
			if defined {
				values[factor] = &v
			} else {
				values[factor] = nil
			}
		}

		table.Records = append(table.Records, contracts.FactorRecord{Security: security, Values: values})
	}

	return table, nil
}

// ReadRiskLoadings parses a risk loading CSV (security,<risk factor>,...)
// 리스크 로딩은 결측을 허용하지 않음
func ReadRiskLoadings(r io.Reader, date time.Time, version int) (*contracts.RiskLoadings, error) {
	header, rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	loadings := &contracts.RiskLoadings{
		Date:      date,
		Version:   version,
		Factors:   header[1:],
		Exposures: make(map[string][]float64, len(rows)),
	}

	for i, row := range rows {
		security := strings.TrimSpace(row[0])
		exposures := make([]float64, len(loadings.Factors))
		for j := range loadings.Factors {
			v, defined, err := parseCell(row[j+1])
			if err != nil || !defined {
				return nil, fmt.Errorf("line %d, column %s: exposure must be numeric", i+2, loadings.Factors[j])
			}
			exposures[j] = v
		}
		loadings.Exposures[security] = exposures
	}

	return loadings, nil
}

// ReadUniverse parses one security per line; blank lines and # comments are skipped
func ReadUniverse(r io.Reader) ([]string, error) {
	var securities []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		securities = append(securities, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read universe: %w", err)
	}

	return securities, nil
}

func readCSV(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("parse csv: missing header")
	}

	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if !strings.EqualFold(header[0], "security") {
		return nil, nil, fmt.Errorf("parse csv: first column must be 'security', got %q", header[0])
	}

	return header, records[1:], nil
}

func parseCell(cell string) (float64, bool, error) {
	cell = strings.TrimSpace(cell)
	switch strings.ToLower(cell) {
	case "", "nan", "null", "na", "none":
		return 0, false, nil
	}

	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid number %q", cell)
	}
	return v, true, nil
}

// CSVRiskModel serves risk loadings from a CSV file
type CSVRiskModel struct {
	path    string
	version int
}

// NewCSVRiskModel creates a CSV-backed risk model
func NewCSVRiskModel(path string, version int) *CSVRiskModel {
	return &CSVRiskModel{path: path, version: version}
}

// Loadings returns the loadings of the file restricted to securities
func (m *CSVRiskModel) Loadings(ctx context.Context, date time.Time, securities []string) (*contracts.RiskLoadings, error) {
	f, err := os.Open(m.path)
	if err != nil {
		return nil, fmt.Errorf("open risk file: %w", err)
	}
	defer f.Close()

	loadings, err := ReadRiskLoadings(f, date, m.version)
	if err != nil {
		return nil, err
	}

	restricted, _ := loadings.Restrict(securities)
	return restricted, nil
}
