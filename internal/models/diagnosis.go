// Package models defines the data structures for the taxfree engine.
package models

import (
	"time"
)

// Industry is the business category chosen in the questionnaire.
type Industry string

const (
	IndustryFoodStore  Industry = "food-store"
	IndustryRetail     Industry = "retail"
	IndustryService    Industry = "service"
	IndustryFreelancer Industry = "freelancer"
	IndustryEducation  Industry = "education"
	IndustryOther      Industry = "other"
)

// ValidIndustries returns all valid industry values.
func ValidIndustries() []Industry {
	return []Industry{
		IndustryFoodStore,
		IndustryRetail,
		IndustryService,
		IndustryFreelancer,
		IndustryEducation,
		IndustryOther,
	}
}

// IsValid checks if the industry is valid.
func (i Industry) IsValid() bool {
	for _, valid := range ValidIndustries() {
		if i == valid {
			return true
		}
	}
	return false
}

var industryLabels = map[Industry]string{
	IndustryFoodStore:  "음식점/카페",
	IndustryRetail:     "소매/쇼핑몰",
	IndustryService:    "서비스업",
	IndustryFreelancer: "프리랜서",
	IndustryEducation:  "학원/교육",
	IndustryOther:      "기타",
}

// Label returns the display label of the industry.
func (i Industry) Label() string {
	if label, ok := industryLabels[i]; ok {
		return label
	}
	return industryLabels[IndustryOther]
}

// TaxStatus is the self-reported VAT registration category.
type TaxStatus string

const (
	TaxStatusSimplified TaxStatus = "simplified"
	TaxStatusGeneral    TaxStatus = "general"
	TaxStatusExempt     TaxStatus = "exempt"
	TaxStatusUnknown    TaxStatus = "unknown"
)

// ValidTaxStatuses returns all valid tax status values.
func ValidTaxStatuses() []TaxStatus {
	return []TaxStatus{TaxStatusSimplified, TaxStatusGeneral, TaxStatusExempt, TaxStatusUnknown}
}

// IsValid checks if the tax status is valid.
func (s TaxStatus) IsValid() bool {
	for _, valid := range ValidTaxStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// TaxType is the resolved VAT regime. It is never unknown.
type TaxType string

const (
	TaxTypeGeneral    TaxType = "general"
	TaxTypeSimplified TaxType = "simplified"
	TaxTypeExempt     TaxType = "exempt"
)

var taxTypeLabels = map[TaxType]string{
	TaxTypeSimplified: "간이과세자",
	TaxTypeGeneral:    "일반과세자",
	TaxTypeExempt:     "면세사업자",
}

// Label returns the display label of the tax type.
func (t TaxType) Label() string {
	return taxTypeLabels[t]
}

// BusinessAge is how long the business has been operating.
type BusinessAge string

const (
	BusinessAgeUnderOneYear BusinessAge = "under-1y"
	BusinessAgeOneToThree   BusinessAge = "1-3y"
	BusinessAgeThreePlus    BusinessAge = "3plus"
)

// ValidBusinessAges returns all valid business age values.
func ValidBusinessAges() []BusinessAge {
	return []BusinessAge{BusinessAgeUnderOneYear, BusinessAgeOneToThree, BusinessAgeThreePlus}
}

// IsValid checks if the business age is valid.
func (a BusinessAge) IsValid() bool {
	for _, valid := range ValidBusinessAges() {
		if a == valid {
			return true
		}
	}
	return false
}

// Bookkeeping is how the business keeps its books.
type Bookkeeping string

const (
	BookkeepingSimple     Bookkeeping = "simple"
	BookkeepingAccountant Bookkeeping = "accountant"
	BookkeepingNone       Bookkeeping = "none"
	BookkeepingUnknown    Bookkeeping = "unknown"
)

// ValidBookkeepings returns all valid bookkeeping values.
func ValidBookkeepings() []Bookkeeping {
	return []Bookkeeping{BookkeepingSimple, BookkeepingAccountant, BookkeepingNone, BookkeepingUnknown}
}

// IsValid checks if the bookkeeping method is valid.
func (b Bookkeeping) IsValid() bool {
	for _, valid := range ValidBookkeepings() {
		if b == valid {
			return true
		}
	}
	return false
}

// QualifiesForCredit reports whether the method earns the bookkeeping tax credit.
func (b Bookkeeping) QualifiesForCredit() bool {
	return b == BookkeepingSimple || b == BookkeepingAccountant
}

// InterestArea steers chat and content. It never affects the calculation.
type InterestArea string

const (
	InterestAreaIncomeTax InterestArea = "income-tax"
	InterestAreaVAT       InterestArea = "vat"
	InterestAreaExpenses  InterestArea = "expenses"
	InterestAreaInsurance InterestArea = "insurance"
	InterestAreaGeneral   InterestArea = "general"
)

var interestAreaLabels = map[InterestArea]string{
	InterestAreaIncomeTax: "종합소득세 절세",
	InterestAreaVAT:       "부가세 신고",
	InterestAreaExpenses:  "경비처리 범위",
	InterestAreaInsurance: "4대보험",
	InterestAreaGeneral:   "세무 전반",
}

// Label returns the display label of the interest area.
func (a InterestArea) Label() string {
	if label, ok := interestAreaLabels[a]; ok {
		return label
	}
	return interestAreaLabels[InterestAreaGeneral]
}

// DiagnosisAnswers is one completed questionnaire.
type DiagnosisAnswers struct {
	Industry      Industry     `json:"industry" validate:"required,oneof=food-store retail service freelancer education other"`
	TaxStatus     TaxStatus    `json:"taxStatus" validate:"required,oneof=simplified general exempt unknown"`
	Revenue       NumericInput `json:"revenue"`
	EmployeeCount NumericInput `json:"employeeCount"`
	BusinessAge   BusinessAge  `json:"businessAge" validate:"required,oneof=under-1y 1-3y 3plus"`
	Bookkeeping   Bookkeeping  `json:"bookkeeping" validate:"required,oneof=simple accountant none unknown"`
	InterestArea  InterestArea `json:"interestArea,omitempty" validate:"omitempty,oneof=income-tax vat expenses insurance general"`
}

// ReportSchedule lists the filing months for income tax and VAT.
type ReportSchedule struct {
	IncomeTax int   `json:"incomeTax"`
	VAT       []int `json:"vat"`
}

// DiagnosisDetail is the audit trail of the income tax derivation.
type DiagnosisDetail struct {
	AnnualRevenue         int     `json:"annualRevenue"`
	ExpenseRate           float64 `json:"expenseRate"`
	EstimatedExpense      int     `json:"estimatedExpense"`
	TaxableIncome         int     `json:"taxableIncome"`
	TaxBracket            string  `json:"taxBracket"`
	IncomeTaxBeforeCredit int     `json:"incomeTaxBeforeCredit"`
	TaxCredit             int     `json:"taxCredit"`
	LocalIncomeTax        int     `json:"localIncomeTax"`
}

// DiagnosisResult is the full tax estimate derived from one DiagnosisAnswers.
// Amounts are annual totals in man-won.
type DiagnosisResult struct {
	Answers            DiagnosisAnswers `json:"answers"`
	Recommendation     string           `json:"recommendation"`
	EstimatedIncomeTax int              `json:"estimatedIncomeTax"`
	EstimatedVAT       int              `json:"estimatedVAT"`
	EstimatedInsurance int              `json:"estimatedInsurance"`
	TaxType            TaxType          `json:"taxType"`
	ReportSchedule     ReportSchedule   `json:"reportSchedule"`
	Detail             DiagnosisDetail  `json:"detail"`
}

// Revenue returns the normalized annual revenue carried in the result's answers.
func (r *DiagnosisResult) Revenue() int {
	return r.Answers.Revenue.Int()
}

// EmployeeCount returns the normalized employee count carried in the result's answers.
func (r *DiagnosisResult) EmployeeCount() int {
	return r.Answers.EmployeeCount.Int()
}

// DiagnosisSource indicates how a diagnosis entered the system.
type DiagnosisSource string

const (
	DiagnosisSourceWeb    DiagnosisSource = "web"
	DiagnosisSourceCSV    DiagnosisSource = "csv"
	DiagnosisSourceLambda DiagnosisSource = "lambda"
)

// Diagnosis is a stored questionnaire together with its computed result.
type Diagnosis struct {
	ID        string           `json:"id" db:"id"`
	Answers   DiagnosisAnswers `json:"answers" db:"answers"`
	Result    DiagnosisResult  `json:"result" db:"result"`
	Source    DiagnosisSource  `json:"source" db:"source"`
	BatchID   string           `json:"batch_id,omitempty" db:"batch_id"`
	Email     string           `json:"email,omitempty" db:"email"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// DiagnosisSummary is a lightweight view for listings.
type DiagnosisSummary struct {
	ID                 string    `json:"id"`
	Industry           Industry  `json:"industry"`
	TaxType            TaxType   `json:"taxType"`
	Revenue            int       `json:"revenue"`
	EstimatedIncomeTax int       `json:"estimatedIncomeTax"`
	EstimatedVAT       int       `json:"estimatedVAT"`
	CreatedAt          time.Time `json:"created_at"`
}

// ToSummary converts a Diagnosis to DiagnosisSummary.
func (d *Diagnosis) ToSummary() DiagnosisSummary {
	return DiagnosisSummary{
		ID:                 d.ID,
		Industry:           d.Answers.Industry,
		TaxType:            d.Result.TaxType,
		Revenue:            d.Result.Revenue(),
		EstimatedIncomeTax: d.Result.EstimatedIncomeTax,
		EstimatedVAT:       d.Result.EstimatedVAT,
		CreatedAt:          d.CreatedAt,
	}
}

// BulkInsertResult contains the results of a bulk insert operation.
type BulkInsertResult struct {
	InsertedCount int      `json:"inserted_count"`
	FailedCount   int      `json:"failed_count"`
	Errors        []string `json:"errors,omitempty"`
}
