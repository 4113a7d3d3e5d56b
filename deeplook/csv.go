package deeplook

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Header is the ordered, de-duplicated column list shared by every record of a table.
type Header struct {
	names []string
	pos   map[string]int
	raw   int
}

// NewHeader builds a header from raw column names. Names are cleaned with cleanCell;
// a name that occurs more than once keeps its first position but reads the value of
// its last occurrence.
func NewHeader(columns []string) *Header {
	h := &Header{pos: make(map[string]int, len(columns)), raw: len(columns)}
	for i, col := range columns {
		name := cleanCell(col)
		if _, seen := h.pos[name]; !seen {
			h.names = append(h.names, name)
		}
		h.pos[name] = i
	}
	return h
}

// Names returns the column names in header order.
func (h *Header) Names() []string {
	if h == nil {
		return nil
	}
	return cloneStrings(h.names)
}

// Has reports whether the header contains the named column.
func (h *Header) Has(name string) bool {
	if h == nil {
		return false
	}
	_, ok := h.pos[name]
	return ok
}

// Len returns the number of distinct columns.
func (h *Header) Len() int {
	if h == nil {
		return 0
	}
	return len(h.names)
}

// Record is one data row keyed by its table's header.
type Record struct {
	header *Header
	cells  []string
}

func newRecord(h *Header, cells []string) Record {
	values := make([]string, h.raw)
	for i := range values {
		if i < len(cells) {
			values[i] = strings.TrimSpace(cells[i])
		}
	}
	return Record{header: h, cells: values}
}

// Get returns the value of the named column and whether the column exists.
func (r Record) Get(name string) (string, bool) {
	if r.header == nil {
		return "", false
	}
	idx, ok := r.header.pos[name]
	if !ok {
		return "", false
	}
	return r.cells[idx], true
}

// Value returns the named column or the empty string.
func (r Record) Value(name string) string {
	v, _ := r.Get(name)
	return v
}

// Keys returns the record's column names in header order.
func (r Record) Keys() []string {
	return r.header.Names()
}

// Values returns the cell values aligned with Keys.
func (r Record) Values() []string {
	if r.header == nil {
		return nil
	}
	out := make([]string, len(r.header.names))
	for i, name := range r.header.names {
		out[i] = r.cells[r.header.pos[name]]
	}
	return out
}

// Map returns the record as a plain map.
func (r Record) Map() map[string]string {
	if r.header == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(r.header.names))
	for _, name := range r.header.names {
		out[name] = r.cells[r.header.pos[name]]
	}
	return out
}

// Table is a parsed delimited-text source.
type Table struct {
	Header  *Header
	Records []Record
}

// Len returns the number of data records.
func (t Table) Len() int {
	return len(t.Records)
}

// Write serializes the table as comma-separated text using the table's header.
func (t Table) Write(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Header.Names()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, rec := range t.Records {
		if err := writer.Write(rec.Values()); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}
	return nil
}

// Parse reads comma-separated text. It never fails: unterminated quotes close at
// end of input and blank rows are dropped.
func Parse(text string) Table {
	return ParseDelimited(text, ',')
}

// ParseDelimited is Parse with a caller-chosen single-byte delimiter.
func ParseDelimited(text string, comma byte) Table {
	rows := ParseRows(text, comma)
	if len(rows) == 0 {
		return Table{Header: NewHeader(nil)}
	}
	header := NewHeader(rows[0])
	records := make([]Record, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		records = append(records, newRecord(header, cells))
	}
	return Table{Header: header, Records: records}
}

// ParseRows splits text into raw rows, header included. Cell text is not trimmed.
func ParseRows(text string, comma byte) [][]string {
	var (
		rows     [][]string
		row      []string
		field    strings.Builder
		inQuotes bool
	)
	endRow := func() {
		row = append(row, field.String())
		field.Reset()
		if !blankRow(row) {
			rows = append(rows, row)
		}
		row = nil
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(text) && text[i+1] == '"' {
				field.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == comma && !inQuotes:
			row = append(row, field.String())
			field.Reset()
		case (c == '\n' || c == '\r') && !inQuotes:
			if c == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			endRow()
		default:
			field.WriteByte(c)
		}
	}
	if field.Len() > 0 || len(row) > 0 {
		endRow()
	}
	return rows
}

func blankRow(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
