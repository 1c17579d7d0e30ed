// Package calendar builds the personal tax filing calendar for a diagnosis.
package calendar

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"taxfree-engine/internal/models"
)

// Category groups events by the tax they belong to.
type Category string

const (
	CategoryIncomeTax   Category = "income-tax"
	CategoryVAT         Category = "vat"
	CategoryInsurance   Category = "insurance"
	CategoryWithholding Category = "withholding"
	CategoryOther       Category = "other"
)

// Importance tells how binding an event is.
type Importance string

const (
	ImportanceMust        Importance = "must"
	ImportanceRecommended Importance = "recommended"
	ImportanceOptional    Importance = "optional"
)

// Event is one filing or payment deadline.
type Event struct {
	ID          string     `json:"id"`
	Month       int        `json:"month"`
	Day         string     `json:"day"`
	Deadline    int        `json:"deadline"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    Category   `json:"category"`
	Importance  Importance `json:"importance"`
	Tip         string     `json:"tip,omitempty"`
}

// DDay is the countdown label of an event relative to a given day.
type DDay struct {
	Text   string `json:"text"`
	Urgent bool   `json:"urgent"`
	Past   bool   `json:"past"`
}

// Entry pairs an event with its countdown, as served to clients.
type Entry struct {
	Event
	DDay DDay `json:"dday"`
}

const urgentDays = 14

// Events derives the yearly filing calendar from a diagnosis, sorted by month then deadline.
func Events(result models.DiagnosisResult) []Event {
	events := []Event{
		{
			ID: "income-tax-confirm", Month: 5, Day: "1일 ~ 31일", Deadline: 31,
			Title:       "종합소득세 확정신고 · 납부",
			Description: "전년도 소득에 대한 종합소득세를 신고하고 납부합니다.",
			Category:    CategoryIncomeTax, Importance: ImportanceMust,
			Tip: fmt.Sprintf("예상 납부액: %s만원. 홈택스에서 전자신고 가능합니다.", humanize.Comma(int64(result.EstimatedIncomeTax))),
		},
		{
			ID: "income-tax-interim", Month: 11, Day: "1일 ~ 30일", Deadline: 30,
			Title:       "종합소득세 중간예납",
			Description: "직전 과세기간 종합소득세액의 1/2을 미리 납부합니다.",
			Category:    CategoryIncomeTax, Importance: ImportanceMust,
			Tip: "중간예납세액이 50만원 미만이면 납부 의무가 면제됩니다.",
		},
	}

	switch result.TaxType {
	case models.TaxTypeSimplified:
		events = append(events,
			Event{
				ID: "vat-simplified-confirm", Month: 1, Day: "1일 ~ 25일", Deadline: 25,
				Title:       "부가가치세 확정신고 (간이)",
				Description: "간이과세자 연 1회 신고 · 납부",
				Category:    CategoryVAT, Importance: ImportanceMust,
				Tip: fmt.Sprintf("예상 부가세: %s만원", humanize.Comma(int64(result.EstimatedVAT))),
			},
			Event{
				ID: "vat-simplified-interim", Month: 7, Day: "1일 ~ 25일", Deadline: 25,
				Title:       "부가가치세 예정부과 (간이)",
				Description: "국세청 고지에 따라 납부합니다.",
				Category:    CategoryVAT, Importance: ImportanceRecommended,
			},
		)
	case models.TaxTypeGeneral:
		halfVAT := humanize.Comma(int64(result.EstimatedVAT / 2))
		for _, m := range []int{1, 7} {
			events = append(events, Event{
				ID: fmt.Sprintf("vat-confirm-%d", m), Month: m, Day: "1일 ~ 25일", Deadline: 25,
				Title:       "부가가치세 확정신고 · 납부",
				Description: "직전 6개월분 확정 신고",
				Category:    CategoryVAT, Importance: ImportanceMust,
				Tip: fmt.Sprintf("예상 부가세(반기): %s만원", halfVAT),
			})
		}
		for _, m := range []int{4, 10} {
			events = append(events, Event{
				ID: fmt.Sprintf("vat-interim-%d", m), Month: m, Day: "1일 ~ 25일", Deadline: 25,
				Title:       "부가가치세 예정신고 · 납부",
				Description: "직전 3개월분 예정 신고 및 납부입니다.",
				Category:    CategoryVAT, Importance: ImportanceMust,
			})
		}
	}

	if employees := result.EmployeeCount(); employees > 0 {
		for m := 1; m <= 12; m++ {
			e := Event{
				ID: fmt.Sprintf("withholding-%d", m), Month: m, Day: "10일까지", Deadline: 10,
				Title:       "원천징수 신고 · 납부",
				Description: fmt.Sprintf("직원 %d명 급여 소득세 원천징수분", employees),
				Category:    CategoryWithholding, Importance: ImportanceOptional,
			}
			if m == 3 {
				e.Importance = ImportanceMust
				e.Tip = "3월은 지급명세서 제출 기한이기도 합니다."
			}
			events = append(events, e)
		}

		events = append(events,
			Event{
				ID: "insurance-annual", Month: 3, Day: "15일까지", Deadline: 15,
				Title:       "4대보험 보수총액 신고",
				Description: "전년도 보수총액 확정 신고",
				Category:    CategoryInsurance, Importance: ImportanceMust,
				Tip: fmt.Sprintf("연간 예상 사업주 부담: %s만원", humanize.Comma(int64(result.EstimatedInsurance))),
			},
			Event{
				ID: "insurance-adjust", Month: 4, Day: "말일까지", Deadline: 30,
				Title:       "4대보험 정산 보험료 납부",
				Description: "보수총액 신고에 따른 정산 차액 납부",
				Category:    CategoryInsurance, Importance: ImportanceRecommended,
			},
		)
	}

	if result.TaxType == models.TaxTypeExempt {
		events = append(events, Event{
			ID: "biz-status-report", Month: 2, Day: "1일 ~ 10일", Deadline: 10,
			Title:       "사업장현황 신고",
			Description: "면세사업자는 매년 사업장현황을 신고해야 합니다.",
			Category:    CategoryOther, Importance: ImportanceMust,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Month != events[j].Month {
			return events[i].Month < events[j].Month
		}
		return events[i].Deadline < events[j].Deadline
	})
	return events
}

// CountDown computes the D-day label of an event in the year of now.
// Deadlines earlier than today are done; within 14 days they are urgent.
func CountDown(e Event, now time.Time) DDay {
	loc := now.Location()
	target := time.Date(now.Year(), time.Month(e.Month), e.Deadline, 0, 0, 0, 0, loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	if target.Before(today) {
		return DDay{Text: "완료", Past: true}
	}

	diff := int(math.Ceil(float64(target.Sub(now)) / float64(24*time.Hour)))
	switch {
	case diff <= 0:
		return DDay{Text: "D-Day", Urgent: true}
	case diff <= urgentDays:
		return DDay{Text: fmt.Sprintf("D-%d", diff), Urgent: true}
	case diff <= 30:
		return DDay{Text: fmt.Sprintf("D-%d", diff)}
	default:
		return DDay{Text: fmt.Sprintf("%d월", e.Month)}
	}
}

// Build returns every event of the diagnosis with its countdown.
func Build(result models.DiagnosisResult, now time.Time) []Entry {
	events := Events(result)
	out := make([]Entry, 0, len(events))
	for _, e := range events {
		out = append(out, Entry{Event: e, DDay: CountDown(e, now)})
	}
	return out
}

// Upcoming returns at most limit events that are not yet past, in calendar order.
func Upcoming(result models.DiagnosisResult, now time.Time, limit int) []Entry {
	var out []Entry
	for _, entry := range Build(result, now) {
		if entry.DDay.Past {
			continue
		}
		out = append(out, entry)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
