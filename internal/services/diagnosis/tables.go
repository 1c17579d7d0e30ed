package diagnosis

import (
	"math"

	"taxfree-engine/internal/models"
)

// TaxBracket is one row of the progressive income tax schedule, in man-won.
// Deduction is the quick-deduction constant for the bracket.
type TaxBracket struct {
	Min       float64
	Max       float64
	Rate      float64
	Deduction float64
}

// ExpenseRates holds the two presumptive expense ratios of an industry, in percent.
type ExpenseRates struct {
	Simple   float64
	Standard float64
}

// 2024 comprehensive income tax schedule (Income Tax Act art. 55).
var taxBrackets = []TaxBracket{
	{Min: 0, Max: 1400, Rate: 0.06, Deduction: 0},
	{Min: 1400, Max: 5000, Rate: 0.15, Deduction: 126},
	{Min: 5000, Max: 8800, Rate: 0.24, Deduction: 576},
	{Min: 8800, Max: 15000, Rate: 0.35, Deduction: 1544},
	{Min: 15000, Max: 30000, Rate: 0.38, Deduction: 1994},
	{Min: 30000, Max: 50000, Rate: 0.40, Deduction: 2594},
	{Min: 50000, Max: 100000, Rate: 0.42, Deduction: 3594},
	{Min: 100000, Max: math.Inf(1), Rate: 0.45, Deduction: 6594},
}

// Representative NTS simple / standard expense ratios per industry.
var expenseRates = map[models.Industry]ExpenseRates{
	models.IndustryFoodStore:  {Simple: 89.7, Standard: 18.0},
	models.IndustryRetail:     {Simple: 91.5, Standard: 12.0},
	models.IndustryService:    {Simple: 63.1, Standard: 22.4},
	models.IndustryFreelancer: {Simple: 64.1, Standard: 20.6},
	models.IndustryEducation:  {Simple: 73.2, Standard: 24.1},
	models.IndustryOther:      {Simple: 61.7, Standard: 20.0},
}

// Revenue at or below which the simple expense ratio applies.
var simpleExpenseThresholds = map[models.Industry]int{
	models.IndustryFoodStore:  6000,
	models.IndustryRetail:     6000,
	models.IndustryService:    3600,
	models.IndustryFreelancer: 2400,
	models.IndustryEducation:  3600,
	models.IndustryOther:      3600,
}

// VAT burden of a simplified taxpayer, as a fraction of revenue.
var simplifiedVATRates = map[models.Industry]float64{
	models.IndustryFoodStore:  0.015,
	models.IndustryRetail:     0.01,
	models.IndustryService:    0.02,
	models.IndustryFreelancer: 0.03,
	models.IndustryEducation:  0.02,
	models.IndustryOther:      0.02,
}

const (
	// SimplifiedRevenueCeiling is the revenue up to which an unknown status is inferred as simplified.
	SimplifiedRevenueCeiling = 8000

	// BasicDeduction is the basic personal deduction.
	BasicDeduction = 150

	bookkeepingCreditRate = 0.2
	// BookkeepingCreditCap caps the bookkeeping tax credit.
	BookkeepingCreditCap = 100

	localIncomeTaxRate = 0.1

	outputVATRate = 0.1
	// Input VAT assumed from a 60% purchase ratio.
	assumedInputVATRate = 0.06
	// Used only if an industry is missing from simplifiedVATRates.
	fallbackSimplifiedVATRate = 0.02

	// AssumedMonthlyWage is the monthly pay assumed per employee.
	AssumedMonthlyWage = 250
	// Employer share: national pension 4.5% + health 3.545% + long-term care 0.4591% + employment 0.9%.
	employerContributionRate = 0.094

	incomeTaxReportMonth = 5

	// MaxRevenue caps normalized revenue, in man-won. Every product of the
	// calculator stays well inside int64 below it.
	MaxRevenue = 1_000_000_000_000
	// MaxEmployeeCount caps the normalized employee count.
	MaxEmployeeCount = 1_000_000
)

var (
	simplifiedVATMonths = []int{1, 7}
	generalVATMonths    = []int{1, 4, 7, 10}
)

// TaxBrackets returns a copy of the progressive tax schedule.
func TaxBrackets() []TaxBracket {
	out := make([]TaxBracket, len(taxBrackets))
	copy(out, taxBrackets)
	return out
}

