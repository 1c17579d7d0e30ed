package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxfree-engine/internal/models"
	"taxfree-engine/internal/services/calendar"
	"taxfree-engine/internal/services/diagnosis"
)

func resultFor(status models.TaxStatus, revenue, employees int) models.DiagnosisResult {
	answers := diagnosis.DefaultAnswers()
	answers.TaxStatus = status
	answers.Revenue = models.IntInput(revenue)
	answers.EmployeeCount = models.IntInput(employees)
	return diagnosis.Calculate(answers)
}

func ids(events []calendar.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}

func TestEvents_SimplifiedWithoutEmployees(t *testing.T) {
	events := calendar.Events(diagnosis.DefaultResult())

	assert.Equal(t, []string{
		"vat-simplified-confirm",
		"income-tax-confirm",
		"vat-simplified-interim",
		"income-tax-interim",
	}, ids(events))

	assert.Equal(t, "예상 부가세: 90만원", events[0].Tip)
	assert.Equal(t, "예상 납부액: 228만원. 홈택스에서 전자신고 가능합니다.", events[1].Tip)
	assert.Equal(t, calendar.ImportanceRecommended, events[2].Importance)
}

func TestEvents_GeneralWithEmployees(t *testing.T) {
	result := resultFor(models.TaxStatusGeneral, 20000, 3)
	events := calendar.Events(result)

	require.Len(t, events, 20)

	var withholding int
	for _, e := range events {
		if e.Category == calendar.CategoryWithholding {
			withholding++
			if e.Month == 3 {
				assert.Equal(t, calendar.ImportanceMust, e.Importance)
				assert.NotEmpty(t, e.Tip)
			} else {
				assert.Equal(t, calendar.ImportanceOptional, e.Importance)
			}
			assert.Equal(t, "직원 3명 급여 소득세 원천징수분", e.Description)
		}
		if e.ID == "vat-confirm-1" {
			assert.Equal(t, "예상 부가세(반기): 400만원", e.Tip)
		}
	}
	assert.Equal(t, 12, withholding)

	var april []string
	for _, e := range events {
		if e.Month == 4 {
			april = append(april, e.ID)
		}
	}
	assert.Equal(t, []string{"withholding-4", "vat-interim-4", "insurance-adjust"}, april, "same month sorts by deadline")
}

func TestEvents_ExemptHasNoVATEvents(t *testing.T) {
	events := calendar.Events(resultFor(models.TaxStatusExempt, 50000, 0))

	assert.Equal(t, []string{"biz-status-report", "income-tax-confirm", "income-tax-interim"}, ids(events))
}

func TestEvents_SortedByMonthThenDeadline(t *testing.T) {
	events := calendar.Events(resultFor(models.TaxStatusGeneral, 12000, 1))

	for i := 1; i < len(events); i++ {
		prev, cur := events[i-1], events[i]
		ordered := prev.Month < cur.Month || (prev.Month == cur.Month && prev.Deadline <= cur.Deadline)
		assert.True(t, ordered, "%s before %s", prev.ID, cur.ID)
	}
}

func TestCountDown(t *testing.T) {
	now := time.Date(2024, time.May, 20, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		month    int
		deadline int
		expected calendar.DDay
	}{
		{"already past this year", 1, 25, calendar.DDay{Text: "완료", Past: true}},
		{"today", 5, 20, calendar.DDay{Text: "D-Day", Urgent: true}},
		{"tomorrow", 5, 21, calendar.DDay{Text: "D-1", Urgent: true}},
		{"within two weeks", 5, 31, calendar.DDay{Text: "D-11", Urgent: true}},
		{"within a month", 6, 10, calendar.DDay{Text: "D-21"}},
		{"later in the year", 11, 30, calendar.DDay{Text: "11월"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := calendar.Event{Month: tt.month, Deadline: tt.deadline}
			assert.Equal(t, tt.expected, calendar.CountDown(e, now))
		})
	}
}

func TestUpcoming(t *testing.T) {
	now := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

	upcoming := calendar.Upcoming(diagnosis.DefaultResult(), now, 3)

	require.Len(t, upcoming, 2)
	assert.Equal(t, "vat-simplified-interim", upcoming[0].ID)
	assert.Equal(t, "income-tax-interim", upcoming[1].ID)
	assert.False(t, upcoming[0].DDay.Past)
}
