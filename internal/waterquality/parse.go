package waterquality

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RowWarning describes a data line that was excluded from the parse.
type RowWarning struct {
	Line   int    `json:"line"`
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

func (w RowWarning) Error() string {
	return fmt.Sprintf("line %d: %s %q: %s", w.Line, w.Field, w.Value, w.Reason)
}

// ParseResult holds the records parsed from a delimited file along with
// warnings for the rows that were dropped.
type ParseResult struct {
	Header   []string     `json:"header"`
	Records  []Record     `json:"records"`
	Warnings []RowWarning `json:"warnings,omitempty"`
}

// Parse reads comma-separated text whose first line is the header.
//
// Fields are split on every comma; quoting is not interpreted, so a value
// containing a comma shifts the remaining columns. Blank lines are skipped.
// Rows whose basins_monitored or proportion are not numeric are excluded
// and reported in Warnings.
func Parse(text string) ParseResult {
	lines := strings.Split(text, "\n")

	var res ParseResult
	if len(lines) == 0 {
		return res
	}

	header := strings.Split(strings.TrimSuffix(lines[0], "\r"), ",")
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	res.Header = header
	res.Records = make([]Record, 0, len(lines)-1)

	for i := 1; i < len(lines); i++ {
		line := strings.TrimSuffix(lines[i], "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		rec, warn := parseRow(header, strings.Split(line, ","), i+1)
		if warn != nil {
			res.Warnings = append(res.Warnings, *warn)
			continue
		}
		res.Records = append(res.Records, rec)
	}

	return res
}

func parseRow(header, values []string, lineNo int) (Record, *RowWarning) {
	rec := Record{
		Fields: make(map[string]string, len(header)),
		Line:   lineNo,
	}

	for j, name := range header {
		var raw string
		if j < len(values) {
			raw = values[j]
		}
		rec.Fields[name] = raw

		switch name {
		case FieldDate:
			rec.Date = raw
		case FieldMeasure:
			rec.Measure = raw
		case FieldStatus:
			rec.Status = raw
		case FieldBasinsMonitored:
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return Record{}, &RowWarning{Line: lineNo, Field: name, Value: raw, Reason: "not an integer"}
			}
			rec.BasinsMonitored = n
		case FieldProportion:
			f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				return Record{}, &RowWarning{Line: lineNo, Field: name, Value: raw, Reason: "not a number"}
			}
			rec.Proportion = f
		}
	}

	return rec, nil
}
