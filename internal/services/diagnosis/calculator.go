// Package diagnosis implements the tax diagnosis calculator: it turns a questionnaire
// into estimated income tax, VAT and social insurance, with a full breakdown of the
// income tax derivation.
//
// Every amount is in man-won and every intermediate value is truncated with floor,
// in the order shown below, so results match the published reference figures exactly.
// The calculator is pure: it reads only its input and the read-only tables in
// tables.go, so it may be called from any number of goroutines.
package diagnosis

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"

	"taxfree-engine/internal/models"
)

const noTaxableIncomeLabel = "과세소득 없음"

// Calculate produces the diagnosis for one questionnaire. It never fails: enum fields
// are assumed valid (see models.ValidateAnswers) and unparseable numbers count as 0.
func Calculate(answers models.DiagnosisAnswers) models.DiagnosisResult {
	// 1. Normalize legacy numeric shapes once, at the boundary
	revenue := normalizeRevenue(answers.Revenue)
	employeeCount := normalizeEmployeeCount(answers.EmployeeCount)

	// 2. Tax type
	taxType := ResolveTaxType(answers.TaxStatus, revenue)

	// 3-5. Expense ratio, estimated expense, taxable income
	expenseRate := ExpenseRate(answers.Industry, revenue, answers.BusinessAge)
	estimatedExpense := floorInt(float64(revenue) * (expenseRate / 100))
	taxableIncome := max(revenue-estimatedExpense-BasicDeduction, 0)

	// 6. Progressive income tax
	incomeTaxBeforeCredit, taxBracket := IncomeTax(taxableIncome)

	// 7. Bookkeeping credit
	taxCredit := BookkeepingCredit(answers.Bookkeeping, incomeTaxBeforeCredit)
	nationalIncomeTax := max(incomeTaxBeforeCredit-taxCredit, 0)

	// 8. Local income tax
	localIncomeTax := floorInt(float64(nationalIncomeTax) * localIncomeTaxRate)

	// 9-10. VAT and insurance
	estimatedVAT := VAT(taxType, answers.Industry, revenue)
	estimatedInsurance := Insurance(employeeCount)

	normalized := answers
	normalized.Revenue = models.IntInput(revenue)
	normalized.EmployeeCount = models.IntInput(employeeCount)

	return models.DiagnosisResult{
		Answers:            normalized,
		Recommendation:     Recommendation(answers.Industry, revenue, taxType),
		EstimatedIncomeTax: nationalIncomeTax + localIncomeTax,
		EstimatedVAT:       estimatedVAT,
		EstimatedInsurance: estimatedInsurance,
		TaxType:            taxType,
		ReportSchedule:     Schedule(taxType),
		Detail: models.DiagnosisDetail{
			AnnualRevenue:         revenue,
			ExpenseRate:           expenseRate,
			EstimatedExpense:      estimatedExpense,
			TaxableIncome:         taxableIncome,
			TaxBracket:            taxBracket,
			IncomeTaxBeforeCredit: incomeTaxBeforeCredit,
			TaxCredit:             taxCredit,
			LocalIncomeTax:        localIncomeTax,
		},
	}
}

// DefaultResult is the diagnosis used when a visitor opens the chat without a questionnaire.
func DefaultResult() models.DiagnosisResult {
	return Calculate(DefaultAnswers())
}

// DefaultAnswers returns the questionnaire behind DefaultResult.
func DefaultAnswers() models.DiagnosisAnswers {
	return models.DiagnosisAnswers{
		Industry:      models.IndustryFreelancer,
		TaxStatus:     models.TaxStatusUnknown,
		Revenue:       models.IntInput(3000),
		EmployeeCount: models.IntInput(0),
		BusinessAge:   models.BusinessAgeOneToThree,
		Bookkeeping:   models.BookkeepingUnknown,
		InterestArea:  models.InterestAreaGeneral,
	}
}

// ResolveTaxType infers the VAT regime. An unknown status is simplified up to the ceiling.
func ResolveTaxType(status models.TaxStatus, revenue int) models.TaxType {
	switch {
	case status == models.TaxStatusExempt:
		return models.TaxTypeExempt
	case status == models.TaxStatusSimplified:
		return models.TaxTypeSimplified
	case status == models.TaxStatusUnknown && revenue <= SimplifiedRevenueCeiling:
		return models.TaxTypeSimplified
	default:
		return models.TaxTypeGeneral
	}
}

// ExpenseRate picks the simple ratio for new or small businesses and the standard ratio otherwise.
func ExpenseRate(industry models.Industry, revenue int, age models.BusinessAge) float64 {
	rates := expenseRates[industry]
	if age == models.BusinessAgeUnderOneYear || revenue <= simpleExpenseThresholds[industry] {
		return rates.Simple
	}
	return rates.Standard
}

// IncomeTax applies the progressive schedule with the quick-deduction method.
// A bracket's upper bound is inclusive: 1400 is taxed at 6%, 1401 at 15%.
func IncomeTax(taxableIncome int) (int, string) {
	if taxableIncome <= 0 {
		return 0, noTaxableIncomeLabel
	}

	income := float64(taxableIncome)
	for _, b := range taxBrackets {
		if income <= b.Max {
			tax := floorInt(income*b.Rate - b.Deduction)
			return max(tax, 0), bracketLabel(b)
		}
	}

	// unreachable while the last bracket is open-ended
	last := taxBrackets[len(taxBrackets)-1]
	return max(floorInt(income*last.Rate-last.Deduction), 0), bracketLabel(last)
}

// BookkeepingCredit is 20% of the computed tax, capped, for qualifying bookkeeping.
func BookkeepingCredit(method models.Bookkeeping, incomeTax int) int {
	if !method.QualifiesForCredit() {
		return 0
	}
	credit := floorInt(float64(incomeTax) * bookkeepingCreditRate)
	if credit > BookkeepingCreditCap {
		credit = BookkeepingCreditCap
	}
	return max(credit, 0)
}

// VAT estimates the annual VAT for the resolved regime.
func VAT(taxType models.TaxType, industry models.Industry, revenue int) int {
	amount := float64(revenue)

	switch taxType {
	case models.TaxTypeExempt:
		return 0
	case models.TaxTypeSimplified:
		rate, ok := simplifiedVATRates[industry]
		if !ok {
			rate = fallbackSimplifiedVATRate
		}
		return max(floorInt(amount*rate), 0)
	default:
		outputVAT := floorInt(amount * outputVATRate)
		inputVAT := floorInt(amount * assumedInputVATRate)
		return max(outputVAT-inputVAT, 0)
	}
}

// Insurance estimates the employer's annual share of the four social insurances.
func Insurance(employeeCount int) int {
	if employeeCount <= 0 {
		return 0
	}
	employeeCount = min(employeeCount, MaxEmployeeCount)
	// evaluated at runtime, left to right, so rounding matches the reference figures
	wage := float64(AssumedMonthlyWage)
	return floorInt(wage * employerContributionRate * 12 * float64(employeeCount))
}

// Schedule returns the filing months for the regime.
func Schedule(taxType models.TaxType) models.ReportSchedule {
	months := generalVATMonths
	if taxType == models.TaxTypeSimplified {
		months = simplifiedVATMonths
	}

	vat := make([]int, len(months))
	copy(vat, months)

	return models.ReportSchedule{
		IncomeTax: incomeTaxReportMonth,
		VAT:       vat,
	}
}

// Recommendation is the one-line summary shown on the result page.
func Recommendation(industry models.Industry, revenue int, taxType models.TaxType) string {
	return fmt.Sprintf("%s · 연매출 %s만원 → %s로 추정됩니다.",
		industry.Label(), humanize.Comma(int64(revenue)), taxType.Label())
}

func bracketLabel(b TaxBracket) string {
	rate := strconv.FormatFloat(b.Rate*100, 'f', -1, 64)
	if math.IsInf(b.Max, 1) {
		return fmt.Sprintf("%s%% (%s~만원)", rate, humanize.Comma(int64(b.Min)))
	}
	return fmt.Sprintf("%s%% (%s~%s만원)", rate, humanize.Comma(int64(b.Min)), humanize.Comma(int64(b.Max)))
}

func floorInt(f float64) int {
	return int(math.Floor(f))
}
