// Package knowledge holds the static tax knowledge base used to ground chat answers.
package knowledge

import (
	"sort"
	"strings"
	"unicode"
)

// Entry is one knowledge base article.
type Entry struct {
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
	Content  string   `json:"content"`
}

// MaxResults is the number of entries FindRelevant returns at most.
const MaxResults = 3

var entries = []Entry{
	{
		Category: "종합소득세",
		Keywords: []string{"종합소득세", "과세표준", "세율", "기준세율", "누진세율"},
		Content: `종합소득세는 근로소득, 사업소득, 기타소득 등 여러 소득을 합산하여 과세하는 세금입니다.
- 과세표준: 총수입 - 필요경비 - 소득공제
- 기본세율: 6%~45% (누진세율)
- 프리랜서는 사업소득으로 신고하며, 총수입에서 경비를 차감한 금액이 과세대상입니다.`,
	},
	{
		Category: "종합소득세",
		Keywords: []string{"사업소득", "프리랜서", "프리랜서 세금"},
		Content: `프리랜서 사업소득 세금 안내:
- 사업소득 = 총수입금액 - 필요경비
- 필요경비: 사업을 위해 직접 소요된 비용 (통신비, 사무용품, 장비 등)
- 사업소득세 3% + 지방소득세 0.3% = 3.3% 원천징수
- 다음 해 5월 종합소득세 확정신고로 정산`,
	},
	{
		Category: "부가가치세",
		Keywords: []string{"부가가치세", "VAT", "부가세", "10%"},
		Content: `부가가치세(VAT)는 재화나 용역의 공급에 따라 부과되는 간접세입니다.
- 일반과세자: 공급가액의 10%, 매출세액에서 매입세액을 공제
- 일반과세자는 1월·7월 확정신고, 4월·10월 예정신고 (각 25일까지)
- 연매출 8,000만원 미만: 간이과세자 (업종별 부가가치율 적용)`,
	},
	{
		Category: "부가가치세",
		Keywords: []string{"간이과세", "간이과세자", "8천만"},
		Content: `간이과세자 기준:
- 직전 연도 공급대가 8,000만원 미만
- 장점: 업종별 부가가치율을 적용해 세 부담이 낮음, 연 1회 신고
- 단점: 매입세액 전액 공제 불가, 일부는 세금계산서 발급 제한
- 연 공급대가 4,800만원 미만이면 납부의무 면제`,
	},
	{
		Category: "사업자등록",
		Keywords: []string{"사업자등록", "사업자등록증", "사업자 등록"},
		Content: `사업자등록 안내:
- 사업 개시일로부터 20일 이내에 관할 세무서에 등록
- 준비서류: 신분증, 사업장 임대차계약서 등
- 온라인: 홈택스(hometax.go.kr)에서 신청 가능
- 등록 후 사업용 계좌를 개설해 홈택스에 신고하는 것을 권장`,
	},
	{
		Category: "사업자등록",
		Keywords: []string{"개인사업자", "법인", "개인사업자 vs 법인"},
		Content: `개인사업자와 법인 차이:
- 개인사업자: 사업자등록만으로 시작, 소득세 6%~45% 누진세율
- 법인: 설립등기 필요, 법인세 9%~24% + 대표 급여·배당에 대한 소득세
- 과세표준이 높아지면 법인 전환이 유리할 수 있음
- 전환 시 세무 전문가와 상담 권장`,
	},
	{
		Category: "기타",
		Keywords: []string{"4대보험", "국민연금", "건강보험", "고용보험"},
		Content: `4대보험 안내:
- 직원을 1명이라도 고용하면 사업장 가입 의무
- 사업주 부담: 국민연금 4.5%, 건강보험 약 3.5%, 장기요양 약 0.46%, 고용보험 0.9% 이상
- 대표자 본인은 지역가입자 또는 사업장 가입자로 건강보험·국민연금 가입
- 매년 3월 15일까지 보수총액 신고`,
	},
	{
		Category: "기타",
		Keywords: []string{"세금신고", "연말정산", "종합소득세 신고"},
		Content: `세금 신고 일정:
- 종합소득세: 5월 1일~31일 확정신고, 11월 중간예납
- 부가가치세: 일반과세자 1월·7월 확정, 4월·10월 예정 / 간이과세자 1월 확정
- 원천세: 매월 10일까지 (직원이 있는 경우)
- 신고기한을 넘기면 가산세가 부과되므로 기한 준수 필수`,
	},
}

// All returns a copy of every entry.
func All() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// FindRelevant ranks entries by keyword overlap with the query. A keyword scores
// when the normalized query contains it or it contains the query. Ties keep the
// knowledge base order. A blank query matches nothing.
func FindRelevant(query string) []Entry {
	q := normalize(query)
	if q == "" {
		return nil
	}

	type scored struct {
		entry Entry
		score int
	}

	var results []scored
	for _, e := range entries {
		score := 0
		for _, keyword := range e.Keywords {
			k := normalize(keyword)
			if strings.Contains(q, k) || strings.Contains(k, q) {
				score++
			}
		}
		if score > 0 {
			results = append(results, scored{entry: e, score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if len(results) > MaxResults {
		results = results[:MaxResults]
	}

	out := make([]Entry, 0, len(results))
	for _, r := range results {
		out = append(out, r.entry)
	}
	return out
}

func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}
