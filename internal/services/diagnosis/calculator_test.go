package diagnosis_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxfree-engine/internal/models"
	"taxfree-engine/internal/services/diagnosis"
)

// mockAnswers creates a questionnaire with default values
func mockAnswers(overrides map[string]interface{}) models.DiagnosisAnswers {
	answers := models.DiagnosisAnswers{
		Industry:      models.IndustryFreelancer,
		TaxStatus:     models.TaxStatusUnknown,
		Revenue:       models.IntInput(3000),
		EmployeeCount: models.IntInput(0),
		BusinessAge:   models.BusinessAgeOneToThree,
		Bookkeeping:   models.BookkeepingUnknown,
		InterestArea:  models.InterestAreaGeneral,
	}

	if v, ok := overrides["industry"]; ok {
		answers.Industry = v.(models.Industry)
	}
	if v, ok := overrides["tax_status"]; ok {
		answers.TaxStatus = v.(models.TaxStatus)
	}
	if v, ok := overrides["revenue"]; ok {
		switch rev := v.(type) {
		case int:
			answers.Revenue = models.IntInput(rev)
		case string:
			answers.Revenue = models.TextInput(rev)
		}
	}
	if v, ok := overrides["employee_count"]; ok {
		switch n := v.(type) {
		case int:
			answers.EmployeeCount = models.IntInput(n)
		case string:
			answers.EmployeeCount = models.TextInput(n)
		}
	}
	if v, ok := overrides["business_age"]; ok {
		answers.BusinessAge = v.(models.BusinessAge)
	}
	if v, ok := overrides["bookkeeping"]; ok {
		answers.Bookkeeping = v.(models.Bookkeeping)
	}

	return answers
}

func TestCalculate_ScenarioA_FreelancerUnknownStatus(t *testing.T) {
	result := diagnosis.Calculate(mockAnswers(nil))

	assert.Equal(t, models.TaxTypeSimplified, result.TaxType, "revenue under the ceiling should infer simplified")
	assert.Equal(t, 0, result.EstimatedInsurance)

	assert.Equal(t, 3000, result.Detail.AnnualRevenue)
	assert.Equal(t, 20.6, result.Detail.ExpenseRate, "3000 exceeds the freelancer simple threshold")
	assert.Equal(t, 618, result.Detail.EstimatedExpense)
	assert.Equal(t, 2232, result.Detail.TaxableIncome)
	assert.Equal(t, "15% (1,400~5,000만원)", result.Detail.TaxBracket)
	assert.Equal(t, 208, result.Detail.IncomeTaxBeforeCredit)
	assert.Equal(t, 0, result.Detail.TaxCredit)
	assert.Equal(t, 20, result.Detail.LocalIncomeTax)
	assert.Equal(t, 228, result.EstimatedIncomeTax, "national tax plus local surtax")
	assert.Equal(t, 90, result.EstimatedVAT)

	assert.Equal(t, models.ReportSchedule{IncomeTax: 5, VAT: []int{1, 7}}, result.ReportSchedule)
	assert.Equal(t, "프리랜서 · 연매출 3,000만원 → 간이과세자로 추정됩니다.", result.Recommendation)
}

func TestCalculate_ScenarioB_GeneralFreelancer(t *testing.T) {
	result := diagnosis.Calculate(mockAnswers(map[string]interface{}{
		"tax_status":   models.TaxStatusGeneral,
		"revenue":      20000,
		"business_age": models.BusinessAgeThreePlus,
		"bookkeeping":  models.BookkeepingNone,
	}))

	assert.Equal(t, models.TaxTypeGeneral, result.TaxType)
	assert.Equal(t, 20.6, result.Detail.ExpenseRate, "standard ratio expected")
	assert.Equal(t, 4120, result.Detail.EstimatedExpense)
	assert.Equal(t, 15730, result.Detail.TaxableIncome)
	assert.Equal(t, "38% (15,000~30,000만원)", result.Detail.TaxBracket)
	assert.Equal(t, 3983, result.Detail.IncomeTaxBeforeCredit)
	assert.Equal(t, 398, result.Detail.LocalIncomeTax)
	assert.Equal(t, 4381, result.EstimatedIncomeTax)
	assert.Equal(t, 800, result.EstimatedVAT, "2000 output VAT minus 1200 assumed input VAT")
	assert.Equal(t, []int{1, 4, 7, 10}, result.ReportSchedule.VAT)
}

func TestCalculate_ScenarioC_ExemptHasNoVAT(t *testing.T) {
	for _, revenue := range []int{0, 500, 8000, 50000, 250000} {
		result := diagnosis.Calculate(mockAnswers(map[string]interface{}{
			"tax_status": models.TaxStatusExempt,
			"revenue":    revenue,
		}))

		assert.Equal(t, models.TaxTypeExempt, result.TaxType, "revenue %d", revenue)
		assert.Equal(t, 0, result.EstimatedVAT, "revenue %d", revenue)
	}
}

func TestCalculate_ScenarioD_Insurance(t *testing.T) {
	tests := []struct {
		name      string
		employees interface{}
		expected  int
	}{
		{"five employees", 5, 1410},
		{"one employee", 1, 282},
		{"ten employees", 10, 2820},
		{"no employees", 0, 0},
		{"legacy none bucket", "none", 0},
		{"legacy 1-4 bucket", "1-4", 282},
		{"legacy 5-plus bucket", "5-plus", 1410},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := diagnosis.Calculate(mockAnswers(map[string]interface{}{
				"employee_count": tt.employees,
			}))
			assert.Equal(t, tt.expected, result.EstimatedInsurance)
		})
	}
}

func TestCalculate_ReferenceFigures(t *testing.T) {
	tests := []struct {
		name       string
		answers    models.DiagnosisAnswers
		taxType    models.TaxType
		expense    int
		taxable    int
		credit     int
		incomeTax  int
		vat        int
		insurance  int
	}{
		{
			name: "small freelancer with simple bookkeeping",
			answers: mockAnswers(map[string]interface{}{
				"tax_status": models.TaxStatusGeneral, "revenue": 1000,
				"business_age": models.BusinessAgeThreePlus, "bookkeeping": models.BookkeepingSimple,
			}),
			taxType: models.TaxTypeGeneral, expense: 640, taxable: 210, credit: 2, incomeTax: 11, vat: 40,
		},
		{
			name: "exempt restaurant with accountant",
			answers: mockAnswers(map[string]interface{}{
				"industry": models.IndustryFoodStore, "tax_status": models.TaxStatusExempt, "revenue": 50000,
				"employee_count": 3, "business_age": models.BusinessAgeThreePlus, "bookkeeping": models.BookkeepingAccountant,
			}),
			taxType: models.TaxTypeExempt, expense: 9000, taxable: 40850, credit: 100, incomeTax: 15010, insurance: 846,
		},
		{
			name: "new simplified retailer",
			answers: mockAnswers(map[string]interface{}{
				"industry": models.IndustryRetail, "tax_status": models.TaxStatusSimplified, "revenue": 5000,
				"employee_count": 2, "business_age": models.BusinessAgeUnderOneYear, "bookkeeping": models.BookkeepingSimple,
			}),
			taxType: models.TaxTypeSimplified, expense: 4575, taxable: 275, credit: 3, incomeTax: 14, vat: 50, insurance: 564,
		},
		{
			name: "service at the simplified ceiling",
			answers: mockAnswers(map[string]interface{}{
				"industry": models.IndustryService, "revenue": 8000, "business_age": models.BusinessAgeThreePlus,
			}),
			taxType: models.TaxTypeSimplified, expense: 1791, taxable: 6059, incomeTax: 965, vat: 160,
		},
		{
			name: "service just above the simplified ceiling",
			answers: mockAnswers(map[string]interface{}{
				"industry": models.IndustryService, "revenue": 8001, "business_age": models.BusinessAgeThreePlus,
			}),
			taxType: models.TaxTypeGeneral, expense: 1792, taxable: 6059, incomeTax: 965, vat: 320,
		},
		{
			name: "large academy in the top bracket",
			answers: mockAnswers(map[string]interface{}{
				"industry": models.IndustryEducation, "tax_status": models.TaxStatusGeneral, "revenue": 150000,
				"employee_count": 10, "business_age": models.BusinessAgeThreePlus, "bookkeeping": models.BookkeepingAccountant,
			}),
			taxType: models.TaxTypeGeneral, expense: 36150, taxable: 113700, credit: 100, incomeTax: 48918, vat: 6000, insurance: 2820,
		},
		{
			name: "zero revenue",
			answers: mockAnswers(map[string]interface{}{
				"industry": models.IndustryOther, "revenue": 0, "business_age": models.BusinessAgeUnderOneYear,
			}),
			taxType: models.TaxTypeSimplified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := diagnosis.Calculate(tt.answers)

			assert.Equal(t, tt.taxType, result.TaxType)
			assert.Equal(t, tt.expense, result.Detail.EstimatedExpense)
			assert.Equal(t, tt.taxable, result.Detail.TaxableIncome)
			assert.Equal(t, tt.credit, result.Detail.TaxCredit)
			assert.Equal(t, tt.incomeTax, result.EstimatedIncomeTax)
			assert.Equal(t, tt.vat, result.EstimatedVAT)
			assert.Equal(t, tt.insurance, result.EstimatedInsurance)
		})
	}
}

func TestCalculate_TopBracketLabel(t *testing.T) {
	result := diagnosis.Calculate(mockAnswers(map[string]interface{}{
		"industry": models.IndustryEducation, "tax_status": models.TaxStatusGeneral, "revenue": 150000,
		"business_age": models.BusinessAgeThreePlus,
	}))

	assert.Equal(t, "45% (100,000~만원)", result.Detail.TaxBracket)
}

func TestCalculate_LegacyRevenueStrings(t *testing.T) {
	result := diagnosis.Calculate(mockAnswers(map[string]interface{}{
		"revenue": "1.5억",
	}))

	assert.Equal(t, 15000, result.Detail.AnnualRevenue)
	assert.Equal(t, 15000, result.Revenue(), "normalized revenue should be carried in the answers")
	assert.True(t, result.Answers.Revenue.IsNumber())
	assert.Equal(t, models.TaxTypeGeneral, result.TaxType)

	garbage := diagnosis.Calculate(mockAnswers(map[string]interface{}{
		"revenue": "garbage",
	}))
	assert.Equal(t, 0, garbage.Detail.AnnualRevenue)
	assert.Equal(t, 0, garbage.EstimatedIncomeTax)
	assert.Equal(t, "과세소득 없음", garbage.Detail.TaxBracket)
}

func TestCalculate_NegativeNumbersClampToZero(t *testing.T) {
	answers := mockAnswers(nil)
	answers.Revenue = models.NumberInput(-500)
	answers.EmployeeCount = models.NumberInput(-3)

	result := diagnosis.Calculate(answers)

	assert.Equal(t, 0, result.Detail.AnnualRevenue)
	assert.Equal(t, 0, result.EmployeeCount())
	assert.Equal(t, 0, result.EstimatedInsurance)
}

func TestCalculate_FractionalNumbersTruncate(t *testing.T) {
	answers := mockAnswers(nil)
	answers.Revenue = models.NumberInput(3000.9)
	answers.EmployeeCount = models.NumberInput(2.7)

	result := diagnosis.Calculate(answers)

	assert.Equal(t, 3000, result.Detail.AnnualRevenue)
	assert.Equal(t, 2, result.EmployeeCount())
}

func TestCalculate_Deterministic(t *testing.T) {
	answers := mockAnswers(map[string]interface{}{
		"industry":       models.IndustryFoodStore,
		"revenue":        "over-150M",
		"employee_count": "1-4",
		"bookkeeping":    models.BookkeepingAccountant,
	})

	first := diagnosis.Calculate(answers)
	second := diagnosis.Calculate(answers)

	assert.Equal(t, first, second)
}

func TestCalculate_DoesNotMutateInput(t *testing.T) {
	answers := mockAnswers(map[string]interface{}{"revenue": "3천만"})

	_ = diagnosis.Calculate(answers)

	assert.False(t, answers.Revenue.IsNumber())
	assert.Equal(t, "3천만", answers.Revenue.Text)
}

func TestCalculate_Properties(t *testing.T) {
	for _, industry := range models.ValidIndustries() {
		for _, status := range models.ValidTaxStatuses() {
			for _, age := range models.ValidBusinessAges() {
				for _, bookkeeping := range models.ValidBookkeepings() {
					prevVAT, prevTax := -1, -1
					for revenue := 0; revenue <= 120000; revenue += 1370 {
						result := diagnosis.Calculate(models.DiagnosisAnswers{
							Industry:      industry,
							TaxStatus:     status,
							Revenue:       models.IntInput(revenue),
							EmployeeCount: models.IntInput(revenue % 4),
							BusinessAge:   age,
							Bookkeeping:   bookkeeping,
						})

						require.NotEqual(t, models.TaxType(models.TaxStatusUnknown), result.TaxType)
						require.GreaterOrEqual(t, result.EstimatedIncomeTax, 0)
						require.GreaterOrEqual(t, result.EstimatedVAT, 0)
						require.GreaterOrEqual(t, result.EstimatedInsurance, 0)
						require.GreaterOrEqual(t, result.Detail.TaxableIncome, 0)
						require.GreaterOrEqual(t, result.Detail.TaxCredit, 0)

						d := result.Detail
						require.Equal(t, max(d.AnnualRevenue-d.EstimatedExpense-diagnosis.BasicDeduction, 0), d.TaxableIncome)
						require.LessOrEqual(t, d.TaxCredit, diagnosis.BookkeepingCreditCap)
						require.LessOrEqual(t, float64(d.TaxCredit), float64(d.IncomeTaxBeforeCredit)*0.2)

						if revenue%4 == 0 {
							require.Equal(t, 0, result.EstimatedInsurance)
						}

						// VAT grows with revenue within a fixed regime
						if status == models.TaxStatusGeneral || status == models.TaxStatusSimplified {
							require.GreaterOrEqual(t, result.EstimatedVAT, prevVAT, "industry=%s revenue=%d", industry, revenue)
							prevVAT = result.EstimatedVAT
						}

						// pre-credit tax never drops as revenue grows, including where the
						// standard expense ratio takes over from the simple one
						require.GreaterOrEqual(t, d.IncomeTaxBeforeCredit, 0)
						if d.TaxableIncome > 0 && prevTax >= 0 {
							require.GreaterOrEqual(t, d.IncomeTaxBeforeCredit, prevTax, "industry=%s age=%s revenue=%d", industry, age, revenue)
						}
						prevTax = d.IncomeTaxBeforeCredit
					}
				}
			}
		}
	}
}

func TestDefaultResult(t *testing.T) {
	result := diagnosis.DefaultResult()

	assert.Equal(t, models.TaxTypeSimplified, result.TaxType)
	assert.Equal(t, 228, result.EstimatedIncomeTax)
	assert.Equal(t, models.InterestAreaGeneral, result.Answers.InterestArea)
}

func TestCalculate_HugeInputsSaturate(t *testing.T) {
	tests := []struct {
		name      string
		revenue   models.NumericInput
		employees models.NumericInput
	}{
		{"number revenue", models.NumberInput(1e20), models.IntInput(0)},
		{"infinite revenue", models.NumberInput(math.Inf(1)), models.IntInput(0)},
		{"exponent string", models.TextInput("1e20"), models.IntInput(0)},
		{"eok string", models.TextInput("9999999999999999억"), models.IntInput(0)},
		{"huge employee count", models.IntInput(3000), models.NumberInput(1e18)},
		{"huge employee string", models.IntInput(3000), models.TextInput("99999999999999999999999")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers := mockAnswers(nil)
			answers.Revenue = tt.revenue
			answers.EmployeeCount = tt.employees

			result := diagnosis.Calculate(answers)
			d := result.Detail

			assert.GreaterOrEqual(t, d.AnnualRevenue, 0)
			assert.LessOrEqual(t, d.AnnualRevenue, diagnosis.MaxRevenue)
			assert.LessOrEqual(t, result.EmployeeCount(), diagnosis.MaxEmployeeCount)
			assert.GreaterOrEqual(t, d.EstimatedExpense, 0)
			assert.GreaterOrEqual(t, d.TaxableIncome, 0)
			assert.GreaterOrEqual(t, d.IncomeTaxBeforeCredit, 0)
			assert.GreaterOrEqual(t, d.LocalIncomeTax, 0)
			assert.GreaterOrEqual(t, result.EstimatedIncomeTax, 0)
			assert.GreaterOrEqual(t, result.EstimatedVAT, 0)
			assert.GreaterOrEqual(t, result.EstimatedInsurance, 0)
			assert.NotContains(t, result.Recommendation, "-")

			if d.AnnualRevenue > diagnosis.SimplifiedRevenueCeiling {
				assert.Equal(t, models.TaxTypeGeneral, result.TaxType)
			}
		})
	}
}

func TestCalculate_HugeRevenueIsGeneralForUnknownStatus(t *testing.T) {
	answers := mockAnswers(map[string]interface{}{"tax_status": models.TaxStatusUnknown})
	answers.Revenue = models.NumberInput(1e20)

	result := diagnosis.Calculate(answers)

	assert.Equal(t, diagnosis.MaxRevenue, result.Detail.AnnualRevenue)
	assert.Equal(t, models.TaxTypeGeneral, result.TaxType)
	assert.Equal(t, "45% (100,000~만원)", result.Detail.TaxBracket)
	assert.Contains(t, result.Recommendation, "1,000,000,000,000만원")
}

func TestInsurance_CapsEmployeeCount(t *testing.T) {
	assert.Equal(t, diagnosis.Insurance(diagnosis.MaxEmployeeCount), diagnosis.Insurance(math.MaxInt64))
	assert.Greater(t, diagnosis.Insurance(diagnosis.MaxEmployeeCount), 0)
	assert.Equal(t, 0, diagnosis.Insurance(-1))
}

func TestIncomeTax_BracketBoundaries(t *testing.T) {
	tests := []struct {
		taxable int
		tax     int
		bracket string
	}{
		{0, 0, "과세소득 없음"},
		{-10, 0, "과세소득 없음"},
		{1, 0, "6% (0~1,400만원)"},
		{1399, 83, "6% (0~1,400만원)"},
		{1400, 84, "6% (0~1,400만원)"},
		{1401, 84, "15% (1,400~5,000만원)"},
		{4999, 623, "15% (1,400~5,000만원)"},
		{5000, 624, "15% (1,400~5,000만원)"},
		{5001, 624, "24% (5,000~8,800만원)"},
		{8800, 1536, "24% (5,000~8,800만원)"},
		{8801, 1536, "35% (8,800~15,000만원)"},
		{100000, 38406, "42% (50,000~100,000만원)"},
		{100001, 38406, "45% (100,000~만원)"},
	}

	for _, tt := range tests {
		tax, bracket := diagnosis.IncomeTax(tt.taxable)
		assert.Equal(t, tt.tax, tax, "taxable=%d", tt.taxable)
		assert.Equal(t, tt.bracket, bracket, "taxable=%d", tt.taxable)
	}
}

func TestBookkeepingCredit(t *testing.T) {
	assert.Equal(t, 0, diagnosis.BookkeepingCredit(models.BookkeepingNone, 5000))
	assert.Equal(t, 0, diagnosis.BookkeepingCredit(models.BookkeepingUnknown, 5000))
	assert.Equal(t, 41, diagnosis.BookkeepingCredit(models.BookkeepingSimple, 208))
	assert.Equal(t, 100, diagnosis.BookkeepingCredit(models.BookkeepingAccountant, 3983), "credit is capped")
	assert.Equal(t, 0, diagnosis.BookkeepingCredit(models.BookkeepingSimple, 0))
}

func TestSchedule(t *testing.T) {
	assert.Equal(t, []int{1, 7}, diagnosis.Schedule(models.TaxTypeSimplified).VAT)
	assert.Equal(t, []int{1, 4, 7, 10}, diagnosis.Schedule(models.TaxTypeGeneral).VAT)
	assert.Equal(t, []int{1, 4, 7, 10}, diagnosis.Schedule(models.TaxTypeExempt).VAT)

	s := diagnosis.Schedule(models.TaxTypeSimplified)
	s.VAT[0] = 99
	assert.Equal(t, []int{1, 7}, diagnosis.Schedule(models.TaxTypeSimplified).VAT)
}

func TestExpenseRate(t *testing.T) {
	assert.Equal(t, 64.1, diagnosis.ExpenseRate(models.IndustryFreelancer, 2400, models.BusinessAgeThreePlus))
	assert.Equal(t, 20.6, diagnosis.ExpenseRate(models.IndustryFreelancer, 2401, models.BusinessAgeThreePlus))
	assert.Equal(t, 64.1, diagnosis.ExpenseRate(models.IndustryFreelancer, 90000, models.BusinessAgeUnderOneYear))
}
