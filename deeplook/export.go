package deeplook

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
)

// exportHeader is the column layout of WriteItemsCSV.
var exportHeader = []string{"프로젝트", "항목코드", "점검항목", "점검결과", "중요도", "대분류", "중분류", "가이드매칭", "비고/코멘트"}

// WriteItemsCSV writes every joined item of the projects, one row per item, with
// the resolved title and importance.
func WriteItemsCSV(w io.Writer, projects []*Project) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range projects {
		for i, it := range p.Items {
			d := Detail(it)
			matched := "N"
			if it.Matched() {
				matched = "Y"
			}
			row := []string{
				p.Label,
				it.Code,
				d.Title,
				string(it.Status),
				it.ResolvedImportance(),
				DisplayText(firstNonEmpty(it.Category, guidanceField(it, func(g *GuidanceEntry) string { return g.Category }))),
				DisplayText(firstNonEmpty(it.Subcategory, guidanceField(it, func(g *GuidanceEntry) string { return g.Subcategory }))),
				matched,
				it.Remark,
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("write %s row %d: %w", p.Label, i, err)
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush items: %w", err)
	}
	return nil
}

// WriteDashboardJSON writes the dashboard as indented JSON.
func WriteDashboardJSON(w io.Writer, d Dashboard) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode dashboard: %w", err)
	}
	return nil
}

func guidanceField(it AuditItem, get func(*GuidanceEntry) string) string {
	if it.Guidance == nil {
		return ""
	}
	return get(it.Guidance)
}
