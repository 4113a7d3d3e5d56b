package deeplook

import "strings"

// Sentinel is the display value for blank or missing text.
const Sentinel = "-"

// AuditItem is one result row joined with its guidance entry. Guidance is nil
// when the code has no match; the entry is shared with the index, never copied.
type AuditItem struct {
	Code        string         `json:"code"`
	Title       string         `json:"title"`
	Status      Status         `json:"status"`
	Importance  string         `json:"importance,omitempty"`
	Category    string         `json:"category,omitempty"`
	Subcategory string         `json:"subcategory,omitempty"`
	Remark      string         `json:"remark,omitempty"`
	Dump        string         `json:"dump,omitempty"`
	Guidance    *GuidanceEntry `json:"-"`

	Record Record `json:"-"`
}

// Matched reports whether the item joined to a guidance entry.
func (it AuditItem) Matched() bool {
	return it.Guidance != nil
}

// ResolvedImportance is the item's own importance, else the guidance's, else "-".
func (it AuditItem) ResolvedImportance() string {
	if it.Importance != "" {
		return it.Importance
	}
	if it.Guidance != nil && it.Guidance.Importance != "" {
		return it.Guidance.Importance
	}
	return Sentinel
}

// Project is one result source's joined items.
type Project struct {
	ID       string      `json:"id"`
	Label    string      `json:"label"`
	Category string      `json:"category"`
	Items    []AuditItem `json:"items"`
}

// MainStatus is 미흡 when any item is deficient, else 양호.
func (p *Project) MainStatus() Status {
	for _, it := range p.Items {
		if it.Status == StatusDeficient {
			return StatusDeficient
		}
	}
	return StatusAdequate
}

// JoinProject joins every record of a result table against the guidance index.
// No record is dropped, matched or not. A table without an item code column
// joins nothing.
func JoinProject(sourceName string, t Table, idx *GuidanceIndex, c ColumnCandidates) *Project {
	schema := ResolveSchema(t.Header, c)
	name := NormalizeName(sourceName)
	p := &Project{
		ID:       name,
		Label:    ProjectLabel(name),
		Category: Sentinel,
		Items:    make([]AuditItem, 0, len(t.Records)),
	}
	for _, rec := range t.Records {
		code := schema.read(rec, schema.ItemCode)
		var guidance *GuidanceEntry
		if schema.ItemCode != "" {
			guidance = idx.Lookup(code)
		}
		p.Items = append(p.Items, AuditItem{
			Code:        code,
			Title:       schema.read(rec, schema.Title),
			Status:      ParseStatus(schema.read(rec, schema.Status)),
			Importance:  schema.read(rec, schema.Importance),
			Category:    schema.read(rec, schema.Category),
			Subcategory: schema.read(rec, schema.Subcategory),
			Remark:      schema.read(rec, schema.Remark),
			Dump:        schema.read(rec, schema.Dump),
			Guidance:    guidance,
			Record:      rec,
		})
	}
	if len(p.Items) > 0 && p.Items[0].Category != "" {
		p.Category = p.Items[0].Category
	}
	return p
}

// ProjectLabel strips a case-insensitive trailing ".csv" from a source name.
func ProjectLabel(sourceName string) string {
	const ext = ".csv"
	if len(sourceName) >= len(ext) && strings.EqualFold(sourceName[len(sourceName)-len(ext):], ext) {
		return sourceName[:len(sourceName)-len(ext)]
	}
	return sourceName
}
