package deeplook

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func project(name string, statuses ...Status) *Project {
	p := &Project{ID: name, Label: ProjectLabel(name), Category: Sentinel}
	for i, s := range statuses {
		p.Items = append(p.Items, AuditItem{Code: string(rune('A' + i)), Status: s})
	}
	return p
}

func deficient(name string, codes ...string) *Project {
	p := &Project{ID: name, Label: name, Category: Sentinel}
	for _, c := range codes {
		p.Items = append(p.Items, AuditItem{Code: c, Status: StatusDeficient})
	}
	return p
}

func TestDistribute(t *testing.T) {
	a := project("a.csv", StatusAdequate, StatusDeficient, StatusManual)
	b := project("b.csv", StatusAdequate, StatusUnspecified, "N/A", "N/A")

	d := Distribute(a, b)
	assert.Equal(t, 7, d.Total)
	assert.Equal(t, 2, d.Count(StatusAdequate))
	assert.Equal(t, 1, d.Count(StatusDeficient))
	assert.Equal(t, 1, d.Count(StatusManual))
	assert.Equal(t, 1, d.Count(StatusUnspecified))
	assert.Equal(t, 2, d.Count("N/A"))

	sum := 0
	for _, c := range d.Counts {
		sum += c.Count
	}
	assert.Equal(t, d.Total, sum)

	want := []Status{StatusAdequate, StatusDeficient, StatusManual, StatusUnspecified, "N/A"}
	got := make([]Status, 0, len(d.Counts))
	for _, c := range d.Counts {
		got = append(got, c.Status)
	}
	assert.Equal(t, want, got)
}

func TestDistribute_Empty(t *testing.T) {
	d := Distribute()
	assert.Zero(t, d.Total)
	require.Len(t, d.Counts, len(Vocabulary))
	for _, c := range d.Counts {
		assert.Zero(t, c.Count)
	}
	assert.Zero(t, d.GoodRate())
}

func TestGoodRate(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     int
	}{
		{"three of four", []Status{StatusAdequate, StatusAdequate, StatusAdequate, StatusDeficient}, 75},
		{"rounds half up", []Status{StatusAdequate, StatusDeficient, StatusDeficient, StatusDeficient, StatusDeficient, StatusDeficient, StatusDeficient, StatusDeficient}, 13},
		{"one third", []Status{StatusAdequate, StatusManual, StatusUnspecified}, 33},
		{"none adequate", []Status{StatusDeficient}, 0},
		{"pass-through in the base", []Status{StatusAdequate, "N/A"}, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Distribute(project("p", tt.statuses...)).GoodRate())
		})
	}
}

func TestRankWeaknesses(t *testing.T) {
	t.Run("count descending with encounter order on ties", func(t *testing.T) {
		projects := []*Project{
			deficient("p1", "A", "B", "C"),
			deficient("p2", "A", "B", "C", "D"),
			deficient("p3", "A", "B", "C"),
			deficient("p4", "B", "C"),
			deficient("p5", "B", "C"),
		}
		ranked := RankWeaknesses(projects, DefaultTopN)
		got := make([]string, 0, len(ranked))
		for _, w := range ranked {
			got = append(got, w.Code)
		}
		assert.Equal(t, []string{"B", "C", "A", "D"}, got)
		assert.Equal(t, 5, ranked[0].Count)
		assert.Equal(t, 3, ranked[2].Count)
		assert.InDelta(t, 0.6, ranked[2].Ratio, 1e-9)
		assert.InDelta(t, 1.0, ranked[0].Ratio, 1e-9)
	})

	t.Run("truncates to n", func(t *testing.T) {
		ranked := RankWeaknesses([]*Project{deficient("p", "A", "B", "C", "D", "E", "F", "G")}, DefaultTopN)
		require.Len(t, ranked, DefaultTopN)
		assert.Equal(t, "E", ranked[4].Code)
	})

	t.Run("only deficient items count", func(t *testing.T) {
		p := project("p", StatusAdequate, StatusManual, StatusUnspecified)
		assert.Empty(t, RankWeaknesses([]*Project{p}, DefaultTopN))
	})

	t.Run("empty input", func(t *testing.T) {
		ranked := RankWeaknesses(nil, DefaultTopN)
		assert.NotNil(t, ranked)
		assert.Empty(t, ranked)
	})

	t.Run("title from guidance", func(t *testing.T) {
		g := &GuidanceEntry{Code: "A", Title: "root 원격 접속 제한"}
		p := &Project{Items: []AuditItem{{Code: "A", Status: StatusDeficient, Guidance: g}}}
		ranked := RankWeaknesses([]*Project{p}, DefaultTopN)
		require.Len(t, ranked, 1)
		assert.Equal(t, "root 원격 접속 제한", ranked[0].Title)
		assert.Same(t, g, ranked[0].Guidance)
	})
}

func TestSummarizeProjects(t *testing.T) {
	full := project("full.csv", StatusDeficient, StatusAdequate, StatusAdequate, StatusManual)
	empty := &Project{ID: "empty.csv", Label: "empty", Category: Sentinel}

	summaries := SummarizeProjects([]*Project{full, empty})
	require.Len(t, summaries, 2)

	s := summaries[0]
	assert.Equal(t, 4, s.ItemCount)
	assert.Equal(t, StatusDeficient, s.MainStatus)
	assert.False(t, s.NoData)
	want := []Segment{
		{Status: StatusAdequate, Count: 2, Percent: 50},
		{Status: StatusDeficient, Count: 1, Percent: 25},
		{Status: StatusManual, Count: 1, Percent: 25},
	}
	if diff := cmp.Diff(want, s.Segments); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}

	assert.True(t, summaries[1].NoData)
	assert.Empty(t, summaries[1].Segments)
	assert.Equal(t, StatusAdequate, summaries[1].MainStatus)
}

func TestBuildDashboard(t *testing.T) {
	idx := testGuidance(t)
	cols := testColumns()
	projects := []*Project{
		JoinProject("a.csv", Parse("항목코드,점검결과\nU-01,미흡\nU-02,양호\nU-03,양호\n"), idx, cols),
		JoinProject("b.csv", Parse("항목코드,점검결과\nU-01,미흡\nU-02,양호\nX-9,수동점검\n"), idx, cols),
	}

	d := BuildDashboard(projects, 0)
	assert.False(t, d.Empty())
	assert.Equal(t, 2, d.ProjectCount)
	assert.Equal(t, 6, d.ItemCount)
	assert.Equal(t, 2, d.DeficientCount)
	assert.Equal(t, 50, d.GoodRate)
	require.Len(t, d.Weaknesses, 1)
	assert.Equal(t, Weakness{
		Code:     "U-01",
		Title:    "root 계정 원격 접속 제한",
		Count:    2,
		Ratio:    1,
		Guidance: idx.Lookup("U-01"),
	}, d.Weaknesses[0])
	require.Len(t, d.Projects, 2)

	t.Run("idempotent", func(t *testing.T) {
		again := BuildDashboard(projects, 0)
		if diff := cmp.Diff(d, again, cmpopts.IgnoreFields(Weakness{}, "Guidance")); diff != "" {
			t.Errorf("dashboard changed between calls (-first +second):\n%s", diff)
		}
	})

	t.Run("no projects", func(t *testing.T) {
		empty := BuildDashboard(nil, DefaultTopN)
		assert.True(t, empty.Empty())
		assert.Zero(t, empty.GoodRate)
		assert.Empty(t, empty.Weaknesses)
		assert.Empty(t, empty.Projects)
	})
}

func TestStatus(t *testing.T) {
	assert.Equal(t, StatusUnspecified, ParseStatus("   "))
	assert.Equal(t, StatusManual, ParseStatus(" 수동점검 "))
	assert.True(t, StatusManual.Known())
	assert.False(t, Status("N/A").Known())
	assert.Equal(t, "good", StatusAdequate.Badge())
	assert.Equal(t, "bad", StatusDeficient.Badge())
	assert.Equal(t, "warn", StatusManual.Badge())
	assert.Equal(t, "neutral", Status("N/A").Badge())
	assert.Equal(t, "neutral", StatusUnspecified.Badge())
}
