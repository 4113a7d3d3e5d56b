package deeplook

import (
	"fmt"
	"strings"
)

// MaxRemediationSteps is how many numbered remediation steps a guidance entry can carry.
const MaxRemediationSteps = 5

// ColumnCandidates defines possible header names for each field the engine reads.
// Step columns are format strings taking the 1-based step number.
type ColumnCandidates struct {
	ItemCode     []string `yaml:"itemCode"`
	Title        []string `yaml:"title"`
	Status       []string `yaml:"status"`
	Importance   []string `yaml:"importance"`
	Category     []string `yaml:"category"`
	Subcategory  []string `yaml:"subcategory"`
	Page         []string `yaml:"page"`
	Description  []string `yaml:"description"`
	Purpose      []string `yaml:"purpose"`
	Threat       []string `yaml:"threat"`
	Reference    []string `yaml:"reference"`
	Target       []string `yaml:"target"`
	GoodCriteria []string `yaml:"goodCriteria"`
	BadCriteria  []string `yaml:"badCriteria"`
	Remediation  []string `yaml:"remediation"`
	Impact       []string `yaml:"impact"`
	Remark       []string `yaml:"remark"`
	Dump         []string `yaml:"dump"`
	StepTitle    []string `yaml:"stepTitle"`
	StepContent  []string `yaml:"stepContent"`
}

func defaultColumnCandidates() ColumnCandidates {
	return ColumnCandidates{
		ItemCode:     []string{"항목코드", "item code", "code"},
		Title:        []string{"점검항목", "item title", "title"},
		Status:       []string{"점검결과", "result status", "status", "result"},
		Importance:   []string{"중요도", "importance", "severity"},
		Category:     []string{"대분류", "category"},
		Subcategory:  []string{"중분류", "subcategory"},
		Page:         []string{"페이지", "page"},
		Description:  []string{"점검 내용", "description"},
		Purpose:      []string{"점검 목적", "purpose"},
		Threat:       []string{"보안 위협", "threat"},
		Reference:    []string{"참고", "reference", "notes"},
		Target:       []string{"대상", "target"},
		GoodCriteria: []string{"양호판단", "pass criteria"},
		BadCriteria:  []string{"취약판단", "fail criteria"},
		Remediation:  []string{"조치방법", "remediation"},
		Impact:       []string{"조치 시 영향", "impact"},
		Remark:       []string{"비고/코멘트", "remark", "comment"},
		Dump:         []string{"결과덤프", "dump"},
		StepTitle:    []string{"점검조치 %d 제목", "step %d title"},
		StepContent:  []string{"점검조치 %d 내용", "step %d content"},
	}
}

// DefaultColumnCandidates returns the built-in column detection candidates.
func DefaultColumnCandidates() ColumnCandidates {
	return defaultColumnCandidates().clone()
}

// withDefaults fills nil lists from the built-in candidates, so a config only
// needs to name the fields it overrides.
func (c ColumnCandidates) withDefaults() ColumnCandidates {
	return c.merge(defaultColumnCandidates())
}

func (c ColumnCandidates) clone() ColumnCandidates {
	return c.merge(ColumnCandidates{})
}

func (c ColumnCandidates) merge(fallback ColumnCandidates) ColumnCandidates {
	return ColumnCandidates{
		ItemCode:     pickStrings(c.ItemCode, fallback.ItemCode),
		Title:        pickStrings(c.Title, fallback.Title),
		Status:       pickStrings(c.Status, fallback.Status),
		Importance:   pickStrings(c.Importance, fallback.Importance),
		Category:     pickStrings(c.Category, fallback.Category),
		Subcategory:  pickStrings(c.Subcategory, fallback.Subcategory),
		Page:         pickStrings(c.Page, fallback.Page),
		Description:  pickStrings(c.Description, fallback.Description),
		Purpose:      pickStrings(c.Purpose, fallback.Purpose),
		Threat:       pickStrings(c.Threat, fallback.Threat),
		Reference:    pickStrings(c.Reference, fallback.Reference),
		Target:       pickStrings(c.Target, fallback.Target),
		GoodCriteria: pickStrings(c.GoodCriteria, fallback.GoodCriteria),
		BadCriteria:  pickStrings(c.BadCriteria, fallback.BadCriteria),
		Remediation:  pickStrings(c.Remediation, fallback.Remediation),
		Impact:       pickStrings(c.Impact, fallback.Impact),
		Remark:       pickStrings(c.Remark, fallback.Remark),
		Dump:         pickStrings(c.Dump, fallback.Dump),
		StepTitle:    pickStrings(c.StepTitle, fallback.StepTitle),
		StepContent:  pickStrings(c.StepContent, fallback.StepContent),
	}
}

// Schema maps each field to the concrete column name found in one source's header.
// A field whose candidates are all absent maps to "".
type Schema struct {
	ItemCode     string
	Title        string
	Status       string
	Importance   string
	Category     string
	Subcategory  string
	Page         string
	Description  string
	Purpose      string
	Threat       string
	Reference    string
	Target       string
	GoodCriteria string
	BadCriteria  string
	Remediation  string
	Impact       string
	Remark       string
	Dump         string
	StepTitles   [MaxRemediationSteps]string
	StepContents [MaxRemediationSteps]string
}

// read returns the cell for a resolved column; unresolved columns read as empty.
func (s Schema) read(r Record, column string) string {
	if column == "" {
		return ""
	}
	return r.Value(column)
}

// ResolveSchema matches the candidates against a header. Exact names win over
// case-insensitive matches, earlier candidates over later ones.
func ResolveSchema(h *Header, c ColumnCandidates) Schema {
	names := h.Names()
	s := Schema{
		ItemCode:     findColumn(names, c.ItemCode),
		Title:        findColumn(names, c.Title),
		Status:       findColumn(names, c.Status),
		Importance:   findColumn(names, c.Importance),
		Category:     findColumn(names, c.Category),
		Subcategory:  findColumn(names, c.Subcategory),
		Page:         findColumn(names, c.Page),
		Description:  findColumn(names, c.Description),
		Purpose:      findColumn(names, c.Purpose),
		Threat:       findColumn(names, c.Threat),
		Reference:    findColumn(names, c.Reference),
		Target:       findColumn(names, c.Target),
		GoodCriteria: findColumn(names, c.GoodCriteria),
		BadCriteria:  findColumn(names, c.BadCriteria),
		Remediation:  findColumn(names, c.Remediation),
		Impact:       findColumn(names, c.Impact),
		Remark:       findColumn(names, c.Remark),
		Dump:         findColumn(names, c.Dump),
	}
	for i := 0; i < MaxRemediationSteps; i++ {
		s.StepTitles[i] = findColumn(names, expandStep(c.StepTitle, i+1))
		s.StepContents[i] = findColumn(names, expandStep(c.StepContent, i+1))
	}
	return s
}

func expandStep(patterns []string, n int) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if strings.Contains(p, "%d") {
			out = append(out, fmt.Sprintf(p, n))
		}
	}
	return out
}

func findColumn(header []string, candidates []string) string {
	for _, cand := range candidates {
		if cand == "" {
			continue
		}
		for _, col := range header {
			if col == cand {
				return col
			}
		}
	}
	for _, cand := range candidates {
		if cand == "" {
			continue
		}
		for _, col := range header {
			if strings.EqualFold(col, cand) {
				return col
			}
		}
	}
	return ""
}

func pickStrings(custom, fallback []string) []string {
	if custom == nil {
		return cloneStrings(fallback)
	}
	return cloneStrings(custom)
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
