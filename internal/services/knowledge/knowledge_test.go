package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func categories(es []Entry) []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.Category)
	}
	return out
}

func TestFindRelevant_SingleTopic(t *testing.T) {
	results := FindRelevant("간이과세자 기준이 뭔가요?")

	require.Len(t, results, 1)
	assert.Contains(t, results[0].Keywords, "간이과세자")
}

func TestFindRelevant_CaseAndWhitespaceInsensitive(t *testing.T) {
	upper := FindRelevant("VAT")
	lower := FindRelevant("  v a t ")

	require.Len(t, upper, 1)
	assert.Equal(t, upper, lower)
	assert.Equal(t, "부가가치세", upper[0].Category)
}

func TestFindRelevant_TiesKeepOrder(t *testing.T) {
	results := FindRelevant("프리랜서 종합소득세 신고")

	require.Len(t, results, 3)
	assert.Equal(t, "종합소득세", results[0].Category)
	assert.Contains(t, results[1].Keywords, "프리랜서")
	assert.Contains(t, results[2].Keywords, "종합소득세 신고")
}

func TestFindRelevant_RanksByScoreAndCaps(t *testing.T) {
	// "세" is contained in many keywords
	results := FindRelevant("세")

	require.Len(t, results, MaxResults)
	assert.Equal(t, []string{"종합소득세", "부가가치세", "부가가치세"}, categories(results))
	assert.Contains(t, results[0].Keywords, "누진세율", "entry with the most matching keywords first")
	assert.Contains(t, results[2].Keywords, "간이과세")
}

func TestFindRelevant_NoMatch(t *testing.T) {
	assert.Empty(t, FindRelevant("오늘 날씨 어때요"))
	assert.Empty(t, FindRelevant("   "))
}

func TestAll_ReturnsCopy(t *testing.T) {
	all := All()
	require.Len(t, all, 8)

	all[0].Category = "changed"
	assert.Equal(t, "종합소득세", All()[0].Category)
}
