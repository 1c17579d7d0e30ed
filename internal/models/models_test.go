package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAnswers() DiagnosisAnswers {
	return DiagnosisAnswers{
		Industry:      IndustryFreelancer,
		TaxStatus:     TaxStatusUnknown,
		Revenue:       IntInput(3000),
		EmployeeCount: IntInput(0),
		BusinessAge:   BusinessAgeOneToThree,
		Bookkeeping:   BookkeepingUnknown,
	}
}

func TestIndustry_IsValid(t *testing.T) {
	tests := []struct {
		industry Industry
		expected bool
	}{
		{IndustryFoodStore, true},
		{IndustryRetail, true},
		{IndustryService, true},
		{IndustryFreelancer, true},
		{IndustryEducation, true},
		{IndustryOther, true},
		{"manufacturing", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.industry), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.industry.IsValid())
		})
	}
}

func TestEnums_Labels(t *testing.T) {
	assert.Equal(t, "음식점/카페", IndustryFoodStore.Label())
	assert.Equal(t, "기타", Industry("unknown-kind").Label())
	assert.Equal(t, "간이과세자", TaxTypeSimplified.Label())
	assert.Equal(t, "일반과세자", TaxTypeGeneral.Label())
	assert.Equal(t, "면세사업자", TaxTypeExempt.Label())
	assert.Equal(t, "부가세 신고", InterestAreaVAT.Label())
	assert.Equal(t, "세무 전반", InterestArea("").Label())
}

func TestBookkeeping_QualifiesForCredit(t *testing.T) {
	assert.True(t, BookkeepingSimple.QualifiesForCredit())
	assert.True(t, BookkeepingAccountant.QualifiesForCredit())
	assert.False(t, BookkeepingNone.QualifiesForCredit())
	assert.False(t, BookkeepingUnknown.QualifiesForCredit())
}

func TestValidateAnswers_Valid(t *testing.T) {
	answers := validAnswers()
	assert.NoError(t, ValidateAnswers(&answers))

	answers.InterestArea = InterestAreaInsurance
	assert.NoError(t, ValidateAnswers(&answers))
}

func TestValidateAnswers_InvalidFields(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*DiagnosisAnswers)
		expected error
	}{
		{"industry", func(a *DiagnosisAnswers) { a.Industry = "mining" }, ErrInvalidIndustry},
		{"missing industry", func(a *DiagnosisAnswers) { a.Industry = "" }, ErrInvalidIndustry},
		{"tax status", func(a *DiagnosisAnswers) { a.TaxStatus = "corporate" }, ErrInvalidTaxStatus},
		{"business age", func(a *DiagnosisAnswers) { a.BusinessAge = "10y" }, ErrInvalidBusinessAge},
		{"bookkeeping", func(a *DiagnosisAnswers) { a.Bookkeeping = "double-entry" }, ErrInvalidBookkeeping},
		{"interest area", func(a *DiagnosisAnswers) { a.InterestArea = "crypto" }, ErrInvalidInterestArea},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers := validAnswers()
			tt.mutate(&answers)

			err := ValidateAnswers(&answers)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.expected), "got %v", err)
		})
	}
}

func TestNumericInput_UnmarshalJSON(t *testing.T) {
	var a DiagnosisAnswers
	body := `{"industry":"retail","taxStatus":"general","revenue":"1.5억","employeeCount":3,
		"businessAge":"3plus","bookkeeping":"simple"}`

	require.NoError(t, json.Unmarshal([]byte(body), &a))

	assert.False(t, a.Revenue.IsNumber())
	assert.Equal(t, "1.5억", a.Revenue.Text)
	assert.True(t, a.EmployeeCount.IsNumber())
	assert.Equal(t, 3, a.EmployeeCount.Int())
	assert.Equal(t, InterestArea(""), a.InterestArea)
}

func TestNumericInput_NullAndInvalid(t *testing.T) {
	var n NumericInput
	require.NoError(t, json.Unmarshal([]byte("null"), &n))
	assert.False(t, n.IsNumber())
	assert.Equal(t, 0, n.Int())

	assert.Error(t, json.Unmarshal([]byte("true"), &n))
	assert.Error(t, json.Unmarshal([]byte("[1]"), &n))
}

func TestNumericInput_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		A NumericInput `json:"a"`
		B NumericInput `json:"b"`
		C NumericInput `json:"c"`
	}{IntInput(4200), TextInput("under-24M"), NumericInput{}})

	require.NoError(t, err)
	assert.JSONEq(t, `{"a":4200,"b":"under-24M","c":null}`, string(out))
}

func TestNumericInput_String(t *testing.T) {
	assert.Equal(t, "3000", IntInput(3000).String())
	assert.Equal(t, "2.5", NumberInput(2.5).String())
	assert.Equal(t, "5-plus", TextInput("5-plus").String())
}

func TestValidateChatRequest(t *testing.T) {
	req := &ChatRequest{Message: "  간이과세자 기준이 뭔가요?  "}
	require.NoError(t, ValidateChatRequest(req))
	assert.Equal(t, "간이과세자 기준이 뭔가요?", req.Message, "message should be trimmed")

	empty := &ChatRequest{Message: "   "}
	err := ValidateChatRequest(empty)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidChatRequest))
	assert.Contains(t, err.Error(), "질문을 입력해주세요")

	long := &ChatRequest{Message: strings.Repeat("세", MaxChatMessageLength+1)}
	err = ValidateChatRequest(long)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1000자")

	exact := &ChatRequest{Message: strings.Repeat("세", MaxChatMessageLength)}
	assert.NoError(t, ValidateChatRequest(exact), "length is counted in characters, not bytes")
}

func TestNormalizeIndustry(t *testing.T) {
	tests := []struct {
		input    string
		expected Industry
	}{
		{"food-store", IndustryFoodStore},
		{"Restaurant", IndustryFoodStore},
		{"음식점/카페", IndustryFoodStore},
		{" 프리랜서 ", IndustryFreelancer},
		{"학원", IndustryEducation},
		{"SHOP", IndustryRetail},
		{"mining", Industry("mining")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeIndustry(tt.input))
		})
	}
}

func TestNormalizeOtherEnums(t *testing.T) {
	assert.Equal(t, TaxStatusSimplified, NormalizeTaxStatus("간이과세자"))
	assert.Equal(t, TaxStatusUnknown, NormalizeTaxStatus(""))
	assert.Equal(t, TaxStatusExempt, NormalizeTaxStatus("Exempt"))

	assert.Equal(t, BusinessAgeUnderOneYear, NormalizeBusinessAge("under_1y"))
	assert.Equal(t, BusinessAgeThreePlus, NormalizeBusinessAge("3년 이상"))

	assert.Equal(t, BookkeepingAccountant, NormalizeBookkeeping("세무사"))
	assert.Equal(t, BookkeepingUnknown, NormalizeBookkeeping(""))

	assert.Equal(t, InterestAreaGeneral, NormalizeInterestArea(""))
	assert.Equal(t, InterestAreaIncomeTax, NormalizeInterestArea("income_tax"))
}

func TestDiagnosis_ToSummary(t *testing.T) {
	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	d := &Diagnosis{
		ID:      "diag-1",
		Answers: validAnswers(),
		Result: DiagnosisResult{
			Answers:            validAnswers(),
			EstimatedIncomeTax: 228,
			EstimatedVAT:       90,
			TaxType:            TaxTypeSimplified,
		},
		CreatedAt: created,
	}

	summary := d.ToSummary()

	assert.Equal(t, "diag-1", summary.ID)
	assert.Equal(t, IndustryFreelancer, summary.Industry)
	assert.Equal(t, TaxTypeSimplified, summary.TaxType)
	assert.Equal(t, 3000, summary.Revenue)
	assert.Equal(t, 228, summary.EstimatedIncomeTax)
	assert.Equal(t, 90, summary.EstimatedVAT)
	assert.Equal(t, created, summary.CreatedAt)
}
