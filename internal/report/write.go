package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const blank = "-"

var printer = message.NewPrinter(language.AmericanEnglish)

// Write renders s to w in the given format.
func Write(w io.Writer, f Format, s Sheet) error {
	switch f {
	case FormatTable, "":
		return WriteTable(w, s)
	case FormatCSV:
		return WriteCSV(w, s)
	case FormatXLSX:
		return WriteXLSX(w, s)
	default:
		return eris.Errorf("report: unknown format %q", f)
	}
}

// WriteTable writes s as a space-aligned table with grouped money values.
func WriteTable(w io.Writer, s Sheet) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	headers := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		headers[i] = strings.ToUpper(c.Header)
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	for _, row := range s.Rows {
		cells := make([]string, len(s.Columns))
		for i, c := range s.Columns {
			cells[i] = display(c.Kind, cell(row, i))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return eris.Wrap(tw.Flush(), "report: flush table")
}

// WriteCSV writes s as CSV with a header row and unformatted numbers.
func WriteCSV(w io.Writer, s Sheet) error {
	cw := csv.NewWriter(w)

	headers := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		headers[i] = c.Header
	}
	if err := cw.Write(headers); err != nil {
		return eris.Wrap(err, "report: write csv header")
	}

	for _, row := range s.Rows {
		cells := make([]string, len(s.Columns))
		for i := range s.Columns {
			cells[i] = raw(cell(row, i))
		}
		if err := cw.Write(cells); err != nil {
			return eris.Wrap(err, "report: write csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush csv")
}

// WriteXLSX writes s as a single-sheet workbook. Numeric columns are stored
// as numbers so spreadsheets can sort and sum them.
func WriteXLSX(w io.Writer, s Sheet) error {
	f := xlsx.NewFile()
	name := s.Name
	if name == "" {
		name = "Sheet1"
	}
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	header := sheet.AddRow()
	for _, c := range s.Columns {
		header.AddCell().SetString(c.Header)
	}

	for _, row := range s.Rows {
		r := sheet.AddRow()
		for i, c := range s.Columns {
			xc := r.AddCell()
			switch v := cell(row, i).(type) {
			case nil:
			case int:
				xc.SetInt(v)
			case float64:
				if c.Kind == KindMoney {
					xc.SetFloatWithFormat(v, "#,##0")
				} else {
					xc.SetFloat(v)
				}
			default:
				xc.SetString(fmt.Sprint(v))
			}
		}
	}

	return eris.Wrap(f.Write(w), "xlsx: write workbook")
}

func cell(row []any, i int) any {
	if i >= len(row) {
		return nil
	}
	return row[i]
}

func display(k Kind, v any) string {
	if v == nil {
		return blank
	}
	f, isFloat := toFloat(v)
	switch {
	case k == KindMoney && isFloat:
		return printer.Sprintf("$%d", int64(f+0.5))
	case k == KindScore && isFloat:
		return strconv.FormatFloat(f, 'f', 2, 64)
	case k == KindPercent && isFloat:
		return strconv.FormatFloat(f, 'f', 2, 64) + "%"
	case k == KindInt && isFloat:
		return strconv.FormatInt(int64(f), 10)
	}
	s := fmt.Sprint(v)
	if s == "" {
		return blank
	}
	return s
}

func raw(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	}
	return 0, false
}
