package deeplook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const guidanceCSV = `항목코드,점검항목,중요도,대분류,중분류,페이지,점검조치 1 제목,점검조치 1 내용,점검조치 2 제목,점검조치 2 내용,점검조치 3 제목,점검조치 3 내용
U-01,root 계정 원격 접속 제한,상,Unix,계정관리,12,설정 확인,"/etc/securetty 확인
pts 항목 제거",,,,재시작
U-02,패스워드 복잡성 설정,상(3),Unix,계정관리,14,,,,,,
U-03,계정 잠금 임계값 설정,중,Unix,계정관리,16,,,,,,
`

func testColumns() ColumnCandidates {
	return DefaultColumnCandidates()
}

func testGuidance(t *testing.T) *GuidanceIndex {
	t.Helper()
	return NewGuidanceIndex(Parse(guidanceCSV), testColumns())
}

func TestResolveSchema(t *testing.T) {
	t.Run("korean headers", func(t *testing.T) {
		s := ResolveSchema(Parse(guidanceCSV).Header, testColumns())
		assert.Equal(t, "항목코드", s.ItemCode)
		assert.Equal(t, "중요도", s.Importance)
		assert.Equal(t, "점검조치 1 제목", s.StepTitles[0])
		assert.Equal(t, "점검조치 3 내용", s.StepContents[2])
		assert.Empty(t, s.StepTitles[4])
		assert.Empty(t, s.Status)
	})

	t.Run("english headers match case-insensitively", func(t *testing.T) {
		s := ResolveSchema(Parse("Item Code,Result Status,Step 2 Title\n").Header, testColumns())
		assert.Equal(t, "Item Code", s.ItemCode)
		assert.Equal(t, "Result Status", s.Status)
		assert.Equal(t, "Step 2 Title", s.StepTitles[1])
	})

	t.Run("exact match wins over folded match", func(t *testing.T) {
		s := ResolveSchema(Parse("CODE,code\n").Header, ColumnCandidates{ItemCode: []string{"code"}})
		assert.Equal(t, "code", s.ItemCode)
	})

	t.Run("unresolved column reads empty even with blank header names", func(t *testing.T) {
		table := Parse("항목코드,,x\nU-01,blank,y\n")
		s := ResolveSchema(table.Header, testColumns())
		assert.Empty(t, s.Title)
		assert.Empty(t, s.read(table.Records[0], s.Title))
	})
}

func TestColumnCandidates_WithDefaults(t *testing.T) {
	c := ColumnCandidates{Status: []string{"판정"}}.withDefaults()
	assert.Equal(t, []string{"판정"}, c.Status)
	assert.Equal(t, DefaultColumnCandidates().ItemCode, c.ItemCode)
}

func TestBuildIndex_LastWins(t *testing.T) {
	table := Parse("code,title\nA,first\nB,other\nA,second\n")
	idx := BuildIndex(table.Records, "code")
	require.Len(t, idx, 2)
	assert.Equal(t, "second", idx["A"].Value("title"))
}

func TestNewGuidanceIndex(t *testing.T) {
	idx := testGuidance(t)
	require.Equal(t, 3, idx.Len())

	e := idx.Lookup("U-01")
	require.NotNil(t, e)
	assert.Equal(t, "root 계정 원격 접속 제한", e.Title)
	assert.Equal(t, "12", e.Page)
	require.Len(t, e.Steps, 2)
	assert.Equal(t, RemediationStep{Number: 1, Title: "설정 확인", Content: "/etc/securetty 확인\npts 항목 제거"}, e.Steps[0])
	assert.Equal(t, RemediationStep{Number: 3, Content: "재시작"}, e.Steps[1])

	assert.Nil(t, idx.Lookup("U-99"))
	assert.Empty(t, idx.Lookup("U-02").Steps)

	t.Run("duplicates keep first position with last entry", func(t *testing.T) {
		dup := NewGuidanceIndex(Parse("항목코드,점검항목\nA,old\nB,b\nA,new\n"), testColumns())
		entries := dup.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, "new", entries[0].Title)
		assert.Equal(t, "new", dup.Lookup("A").Title)
	})

	t.Run("nil index", func(t *testing.T) {
		var nilIdx *GuidanceIndex
		assert.Nil(t, nilIdx.Lookup("U-01"))
		assert.Zero(t, nilIdx.Len())
	})
}

func TestJoinProject(t *testing.T) {
	idx := testGuidance(t)
	results := Parse("항목코드,점검항목,점검결과,중요도,대분류\n" +
		"U-01,root 원격,미흡,,Unix 서버\n" +
		"U-02,패스워드,양호,하,Windows\n" +
		"Z-99,unknown,N/A,,\n" +
		"U-03,잠금,,,\n")

	p := JoinProject("(260101)HP_DEV_Cent7.CSV", results, idx, testColumns())

	t.Run("join totality", func(t *testing.T) {
		assert.Len(t, p.Items, results.Len())
	})

	t.Run("label and category", func(t *testing.T) {
		assert.Equal(t, "(260101)HP_DEV_Cent7.CSV", p.ID)
		assert.Equal(t, "(260101)HP_DEV_Cent7", p.Label)
		assert.Equal(t, "Unix 서버", p.Category)
	})

	t.Run("guidance references", func(t *testing.T) {
		assert.Same(t, idx.Lookup("U-01"), p.Items[0].Guidance)
		assert.Nil(t, p.Items[2].Guidance)
		assert.False(t, p.Items[2].Matched())
	})

	t.Run("status normalization", func(t *testing.T) {
		assert.Equal(t, StatusDeficient, p.Items[0].Status)
		assert.Equal(t, Status("N/A"), p.Items[2].Status)
		assert.Equal(t, StatusUnspecified, p.Items[3].Status)
	})

	t.Run("importance fallback", func(t *testing.T) {
		assert.Equal(t, "상", p.Items[0].ResolvedImportance())
		assert.Equal(t, "하", p.Items[1].ResolvedImportance())
		assert.Equal(t, Sentinel, p.Items[2].ResolvedImportance())
	})

	t.Run("main status", func(t *testing.T) {
		assert.Equal(t, StatusDeficient, p.MainStatus())
	})
}

func TestJoinProject_EdgeCases(t *testing.T) {
	t.Run("no records", func(t *testing.T) {
		p := JoinProject("empty.csv", Parse("항목코드,점검결과\n"), nil, testColumns())
		assert.Empty(t, p.Items)
		assert.Equal(t, Sentinel, p.Category)
		assert.Equal(t, StatusAdequate, p.MainStatus())
	})

	t.Run("first row without category", func(t *testing.T) {
		p := JoinProject("r.csv", Parse("항목코드,대분류\nA,\nB,Unix\n"), nil, testColumns())
		assert.Equal(t, Sentinel, p.Category)
	})
}

func TestProjectLabel(t *testing.T) {
	tests := []struct{ in, want string }{
		{"report.csv", "report"},
		{"report.CsV", "report"},
		{"report.tsv", "report.tsv"},
		{"csv", "csv"},
		{".csv", ""},
		{"보고서.csv", "보고서"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ProjectLabel(tt.in))
		})
	}
}

func TestScenario_SingleGuidanceSingleResult(t *testing.T) {
	idx := NewGuidanceIndex(Parse("항목코드,중요도\nX1,상\n"), testColumns())
	p := JoinProject("r.csv", Parse("항목코드,점검결과\nX1,미흡\n"), idx, testColumns())

	require.Len(t, p.Items, 1)
	item := p.Items[0]
	assert.Equal(t, StatusDeficient, item.Status)
	assert.Equal(t, "상", item.ResolvedImportance())

	ranked := RankWeaknesses([]*Project{p}, DefaultTopN)
	require.Len(t, ranked, 1)
	assert.Equal(t, "X1", ranked[0].Code)
	assert.Equal(t, 1, ranked[0].Count)
	assert.Equal(t, "X1", ranked[0].Title)
}

func TestJoinProject_NoCodeColumnJoinsNothing(t *testing.T) {
	idx := NewGuidanceIndex(Parse("항목코드,점검항목\n,section heading\nU-01,root\n"), testColumns())
	require.NotNil(t, idx.Lookup(""))

	p := JoinProject("r.csv", Parse("점검항목,점검결과\nsomething,미흡\n"), idx, testColumns())
	require.Len(t, p.Items, 1)
	assert.Empty(t, p.Items[0].Code)
	assert.False(t, p.Items[0].Matched())
	assert.Equal(t, "something", Detail(p.Items[0]).Title)
}

func TestNewGuidanceIndex_AgreesWithBuildIndex(t *testing.T) {
	table := Parse("항목코드,점검항목\nA,old\nB,b\nA,new\nC,c\n")
	idx := NewGuidanceIndex(table, testColumns())
	records := BuildIndex(table.Records, "항목코드")

	require.Equal(t, len(records), idx.Len())
	for code, rec := range records {
		e := idx.Lookup(code)
		require.NotNil(t, e, code)
		assert.Equal(t, rec.Values(), e.Record.Values(), code)
	}
	codes := make([]string, 0, idx.Len())
	for _, e := range idx.Entries() {
		codes = append(codes, e.Code)
	}
	assert.Equal(t, []string{"A", "B", "C"}, codes)
}

func TestNewGuidanceIndex_WithoutCodeColumn(t *testing.T) {
	idx := NewGuidanceIndex(Parse("점검항목\nfirst\nsecond\n"), testColumns())
	require.Equal(t, 1, idx.Len())
	assert.Equal(t, "second", idx.Lookup("").Title)
}
