package deeplook

// RemediationStep is one numbered remediation example of a guidance entry.
type RemediationStep struct {
	Number  int    `json:"number"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

// GuidanceEntry is one checklist rule's reference metadata.
type GuidanceEntry struct {
	Code         string            `json:"code"`
	Title        string            `json:"title"`
	Importance   string            `json:"importance"`
	Category     string            `json:"category"`
	Subcategory  string            `json:"subcategory"`
	Page         string            `json:"page"`
	Description  string            `json:"description"`
	Purpose      string            `json:"purpose"`
	Threat       string            `json:"threat"`
	Reference    string            `json:"reference"`
	Target       string            `json:"target"`
	GoodCriteria string            `json:"goodCriteria"`
	BadCriteria  string            `json:"badCriteria"`
	Remediation  string            `json:"remediation"`
	Impact       string            `json:"impact"`
	Steps        []RemediationStep `json:"steps,omitempty"`

	Record Record `json:"-"`
}

func newGuidanceEntry(rec Record, s Schema) *GuidanceEntry {
	e := &GuidanceEntry{
		Code:         s.read(rec, s.ItemCode),
		Title:        s.read(rec, s.Title),
		Importance:   s.read(rec, s.Importance),
		Category:     s.read(rec, s.Category),
		Subcategory:  s.read(rec, s.Subcategory),
		Page:         s.read(rec, s.Page),
		Description:  s.read(rec, s.Description),
		Purpose:      s.read(rec, s.Purpose),
		Threat:       s.read(rec, s.Threat),
		Reference:    s.read(rec, s.Reference),
		Target:       s.read(rec, s.Target),
		GoodCriteria: s.read(rec, s.GoodCriteria),
		BadCriteria:  s.read(rec, s.BadCriteria),
		Remediation:  s.read(rec, s.Remediation),
		Impact:       s.read(rec, s.Impact),
		Record:       rec,
	}
	for i := 0; i < MaxRemediationSteps; i++ {
		title := s.read(rec, s.StepTitles[i])
		content := s.read(rec, s.StepContents[i])
		if title == "" && content == "" {
			continue
		}
		e.Steps = append(e.Steps, RemediationStep{Number: i + 1, Title: title, Content: content})
	}
	return e
}

// BuildIndex maps each record's keyField value to the record. Later duplicates
// replace earlier ones.
func BuildIndex(records []Record, keyField string) map[string]Record {
	out := make(map[string]Record, len(records))
	for _, rec := range records {
		out[rec.Value(keyField)] = rec
	}
	return out
}

// GuidanceIndex is an immutable code → entry lookup built once per guidance source.
type GuidanceIndex struct {
	byCode  map[string]*GuidanceEntry
	entries []*GuidanceEntry
	schema  Schema
}

// NewGuidanceIndex builds the index from a parsed guidance table. Duplicate codes
// resolve last-wins through BuildIndex; the entry list keeps the position of the
// first occurrence.
func NewGuidanceIndex(t Table, c ColumnCandidates) *GuidanceIndex {
	schema := ResolveSchema(t.Header, c)
	latest := make(map[string]Record, 1)
	if schema.ItemCode != "" {
		latest = BuildIndex(t.Records, schema.ItemCode)
	} else if n := len(t.Records); n > 0 {
		latest[""] = t.Records[n-1]
	}
	idx := &GuidanceIndex{
		byCode:  make(map[string]*GuidanceEntry, len(latest)),
		entries: make([]*GuidanceEntry, 0, len(latest)),
		schema:  schema,
	}
	for _, rec := range t.Records {
		code := schema.read(rec, schema.ItemCode)
		if _, seen := idx.byCode[code]; seen {
			continue
		}
		e := newGuidanceEntry(latest[code], schema)
		idx.byCode[code] = e
		idx.entries = append(idx.entries, e)
	}
	return idx
}

// Lookup returns the entry for code, or nil.
func (idx *GuidanceIndex) Lookup(code string) *GuidanceEntry {
	if idx == nil {
		return nil
	}
	return idx.byCode[code]
}

// Len returns the number of distinct codes.
func (idx *GuidanceIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Entries returns the entries in source order.
func (idx *GuidanceIndex) Entries() []*GuidanceEntry {
	if idx == nil {
		return nil
	}
	out := make([]*GuidanceEntry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// Schema returns the columns resolved from the guidance header.
func (idx *GuidanceIndex) Schema() Schema {
	if idx == nil {
		return Schema{}
	}
	return idx.schema
}
