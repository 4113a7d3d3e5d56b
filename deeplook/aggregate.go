package deeplook

import "sort"

// DefaultTopN is the size of the weakness ranking.
const DefaultTopN = 5

// segmentOrder is the stacking order of a project's proportional bar.
var segmentOrder = []Status{StatusAdequate, StatusDeficient, StatusManual, StatusUnspecified}

// Weakness is one item code ranked by how often it was deficient.
type Weakness struct {
	Code     string         `json:"code"`
	Title    string         `json:"title"`
	Count    int            `json:"count"`
	Ratio    float64        `json:"ratio"`
	Guidance *GuidanceEntry `json:"-"`
}

// Segment is one status slice of a project's proportional bar.
type Segment struct {
	Status  Status  `json:"status"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// ProjectSummary is the per-project breakdown.
type ProjectSummary struct {
	ID           string       `json:"id"`
	Label        string       `json:"label"`
	Category     string       `json:"category"`
	ItemCount    int          `json:"itemCount"`
	MainStatus   Status       `json:"mainStatus"`
	Distribution Distribution `json:"distribution"`
	Segments     []Segment    `json:"segments"`
	NoData       bool         `json:"noData"`
}

// Dashboard bundles every aggregate over one set of projects.
type Dashboard struct {
	ProjectCount   int              `json:"projectCount"`
	ItemCount      int              `json:"itemCount"`
	DeficientCount int              `json:"deficientCount"`
	GoodRate       int              `json:"goodRate"`
	Distribution   Distribution     `json:"distribution"`
	Weaknesses     []Weakness       `json:"weaknesses"`
	Projects       []ProjectSummary `json:"projects"`
}

// Empty reports whether the dashboard was built from no projects.
func (d Dashboard) Empty() bool {
	return d.ProjectCount == 0
}

// Distribute counts statuses across all items of the given projects.
func Distribute(projects ...*Project) Distribution {
	d := newDistribution()
	for _, p := range projects {
		if p == nil {
			continue
		}
		for _, it := range p.Items {
			d.add(it.Status)
		}
	}
	return d
}

// RankWeaknesses groups deficient items by code and returns the n most frequent.
// Ties keep encounter order: projects in order, then items in order.
func RankWeaknesses(projects []*Project, n int) []Weakness {
	ranked := []Weakness{}
	position := make(map[string]int)
	for _, p := range projects {
		if p == nil {
			continue
		}
		for _, it := range p.Items {
			if it.Status != StatusDeficient {
				continue
			}
			if at, ok := position[it.Code]; ok {
				ranked[at].Count++
				continue
			}
			position[it.Code] = len(ranked)
			ranked = append(ranked, Weakness{Code: it.Code, Count: 1, Guidance: it.Guidance})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	for i := range ranked {
		w := &ranked[i]
		w.Title = w.Code
		if w.Guidance != nil && w.Guidance.Title != "" {
			w.Title = w.Guidance.Title
		}
		w.Ratio = float64(w.Count) / float64(ranked[0].Count)
	}
	return ranked
}

// SummarizeProjects returns one summary per project in input order.
func SummarizeProjects(projects []*Project) []ProjectSummary {
	out := make([]ProjectSummary, 0, len(projects))
	for _, p := range projects {
		if p == nil {
			continue
		}
		dist := Distribute(p)
		s := ProjectSummary{
			ID:           p.ID,
			Label:        p.Label,
			Category:     p.Category,
			ItemCount:    len(p.Items),
			MainStatus:   p.MainStatus(),
			Distribution: dist,
			NoData:       dist.Total == 0,
		}
		if !s.NoData {
			for _, status := range segmentOrder {
				count := dist.Count(status)
				if count == 0 {
					continue
				}
				s.Segments = append(s.Segments, Segment{
					Status:  status,
					Count:   count,
					Percent: float64(count) / float64(dist.Total) * 100,
				})
			}
		}
		out = append(out, s)
	}
	return out
}

// BuildDashboard computes the full summary. topN <= 0 selects DefaultTopN.
func BuildDashboard(projects []*Project, topN int) Dashboard {
	if topN <= 0 {
		topN = DefaultTopN
	}
	dist := Distribute(projects...)
	return Dashboard{
		ProjectCount:   len(projects),
		ItemCount:      dist.Total,
		DeficientCount: dist.Count(StatusDeficient),
		GoodRate:       dist.GoodRate(),
		Distribution:   dist,
		Weaknesses:     RankWeaknesses(projects, topN),
		Projects:       SummarizeProjects(projects),
	}
}
