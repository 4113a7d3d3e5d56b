package deeplook

import "strings"

// StatusAll disables status filtering in FilterItems.
const StatusAll = "all"

// Importance levels derived from the Hangul grade letter.
const (
	ImportanceHigh = "high"
	ImportanceMid  = "mid"
	ImportanceLow  = "low"
)

// ImportanceLabel keeps only the Hangul syllables of an importance value, so
// "상(3)" reads "상". Values without Hangul read "-".
func ImportanceLabel(importance string) string {
	label := strings.Map(func(r rune) rune {
		if r >= '가' && r <= '힣' {
			return r
		}
		return -1
	}, importance)
	if label == "" {
		return Sentinel
	}
	return label
}

// ImportanceLevel maps a label to high (상), mid (중) or low.
func ImportanceLevel(label string) string {
	switch label {
	case "상":
		return ImportanceHigh
	case "중":
		return ImportanceMid
	default:
		return ImportanceLow
	}
}

// DisplayText trims text and substitutes "-" when nothing is left.
func DisplayText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return Sentinel
	}
	return text
}

// ItemFilter selects items by status literal and free-text query.
type ItemFilter struct {
	Status string
	Query  string
}

// FilterResult holds the matching items plus the counts shown as "shown / total".
type FilterResult struct {
	Items []AuditItem `json:"items"`
	Shown int         `json:"shown"`
	Total int         `json:"total"`
}

// FilterItems keeps a project's items whose status equals f.Status (unless it is
// empty or "all") and whose title, code or subcategory contains f.Query,
// ignoring case and compatibility forms.
func FilterItems(p *Project, f ItemFilter) FilterResult {
	res := FilterResult{Items: []AuditItem{}}
	if p == nil {
		return res
	}
	res.Total = len(p.Items)
	status := strings.TrimSpace(f.Status)
	query := searchKey(f.Query)
	for _, it := range p.Items {
		if status != "" && status != StatusAll && string(it.Status) != status {
			continue
		}
		if query != "" {
			target := searchKey(strings.Join([]string{it.Title, it.Code, it.Subcategory}, " "))
			if !strings.Contains(target, query) {
				continue
			}
		}
		res.Items = append(res.Items, it)
	}
	res.Shown = len(res.Items)
	return res
}

// FindItem returns the first item with the given code.
func (p *Project) FindItem(code string) (AuditItem, bool) {
	for _, it := range p.Items {
		if it.Code == code {
			return it, true
		}
	}
	return AuditItem{}, false
}

// ItemDetail is the resolved view of one item for a detail panel. Every text
// field already carries the "-" fallback.
type ItemDetail struct {
	Code            string            `json:"code"`
	Title           string            `json:"title"`
	Status          Status            `json:"status"`
	Importance      string            `json:"importance"`
	ImportanceLabel string            `json:"importanceLabel"`
	ImportanceLevel string            `json:"importanceLevel"`
	Category        string            `json:"category"`
	Page            string            `json:"page"`
	Description     string            `json:"description"`
	Purpose         string            `json:"purpose"`
	Threat          string            `json:"threat"`
	Reference       string            `json:"reference"`
	Target          string            `json:"target"`
	GoodCriteria    string            `json:"goodCriteria"`
	BadCriteria     string            `json:"badCriteria"`
	Remediation     string            `json:"remediation"`
	Impact          string            `json:"impact"`
	Remark          string            `json:"remark"`
	Dump            string            `json:"dump"`
	Steps           []RemediationStep `json:"steps"`
	Matched         bool              `json:"matched"`
}

// Detail resolves an item against its guidance entry.
func Detail(it AuditItem) ItemDetail {
	g := it.Guidance
	if g == nil {
		g = &GuidanceEntry{}
	}
	importance := it.ResolvedImportance()
	label := ImportanceLabel(importance)
	d := ItemDetail{
		Code:            DisplayText(firstNonEmpty(it.Code, g.Code)),
		Title:           DisplayText(firstNonEmpty(it.Title, g.Title)),
		Status:          it.Status,
		Importance:      importance,
		ImportanceLabel: label,
		ImportanceLevel: ImportanceLevel(label),
		Category:        DisplayText(categoryPath(firstNonEmpty(g.Category, it.Category), firstNonEmpty(g.Subcategory, it.Subcategory))),
		Page:            DisplayText(g.Page),
		Description:     DisplayText(g.Description),
		Purpose:         DisplayText(g.Purpose),
		Threat:          DisplayText(g.Threat),
		Reference:       DisplayText(g.Reference),
		Target:          DisplayText(g.Target),
		GoodCriteria:    DisplayText(g.GoodCriteria),
		BadCriteria:     DisplayText(g.BadCriteria),
		Remediation:     DisplayText(g.Remediation),
		Impact:          DisplayText(g.Impact),
		Remark:          DisplayText(it.Remark),
		Dump:            DisplayText(it.Dump),
		Steps:           make([]RemediationStep, 0, len(g.Steps)),
		Matched:         it.Matched(),
	}
	for _, step := range g.Steps {
		step.Content = DisplayText(step.Content)
		d.Steps = append(d.Steps, step)
	}
	return d
}

func categoryPath(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " / ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
