// Package models defines the data structures for the taxfree engine.
package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Common errors
var (
	ErrInvalidIndustry     = errors.New("invalid industry")
	ErrInvalidTaxStatus    = errors.New("invalid tax status")
	ErrInvalidBusinessAge  = errors.New("invalid business age")
	ErrInvalidBookkeeping  = errors.New("invalid bookkeeping method")
	ErrInvalidInterestArea = errors.New("invalid interest area")
	ErrInvalidChatRequest  = errors.New("invalid chat request")
	ErrDiagnosisNotFound   = errors.New("diagnosis not found")
	ErrInvalidEmail        = errors.New("invalid email")
)

// validate is safe for concurrent use and caches struct metadata.
var validate = validator.New()

var fieldErrors = map[string]error{
	"Industry":     ErrInvalidIndustry,
	"TaxStatus":    ErrInvalidTaxStatus,
	"BusinessAge":  ErrInvalidBusinessAge,
	"Bookkeeping":  ErrInvalidBookkeeping,
	"InterestArea": ErrInvalidInterestArea,
}

// ValidateAnswers checks that every enum field is inside its closed set.
// The first failing field decides the returned sentinel error.
func ValidateAnswers(a *DiagnosisAnswers) error {
	err := validate.Struct(a)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	for _, e := range validationErrors {
		if sentinel, ok := fieldErrors[e.StructField()]; ok {
			return fmt.Errorf("%w: %q", sentinel, fmt.Sprint(e.Value()))
		}
	}
	return err
}

// ValidateEmail checks a report recipient address.
func ValidateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return nil
}

// NormalizeIndustry converts loose industry spellings (including Korean labels) to standard values.
func NormalizeIndustry(value string) Industry {
	normalized := normalizeKey(value)

	industryMap := map[string]Industry{
		"food-store":  IndustryFoodStore,
		"food":        IndustryFoodStore,
		"restaurant":  IndustryFoodStore,
		"cafe":        IndustryFoodStore,
		"음식점":         IndustryFoodStore,
		"음식점/카페":      IndustryFoodStore,
		"카페":          IndustryFoodStore,
		"retail":      IndustryRetail,
		"shop":        IndustryRetail,
		"online-shop": IndustryRetail,
		"소매":          IndustryRetail,
		"소매/쇼핑몰":      IndustryRetail,
		"쇼핑몰":         IndustryRetail,
		"service":     IndustryService,
		"서비스":         IndustryService,
		"서비스업":        IndustryService,
		"freelancer":  IndustryFreelancer,
		"freelance":   IndustryFreelancer,
		"프리랜서":        IndustryFreelancer,
		"education":   IndustryEducation,
		"academy":     IndustryEducation,
		"교육":          IndustryEducation,
		"학원":          IndustryEducation,
		"학원/교육":       IndustryEducation,
		"other":       IndustryOther,
		"기타":          IndustryOther,
	}

	if mapped, ok := industryMap[normalized]; ok {
		return mapped
	}

	// Return as-is if no mapping found (will fail validation)
	return Industry(normalized)
}

// NormalizeTaxStatus converts loose tax status spellings to standard values.
func NormalizeTaxStatus(value string) TaxStatus {
	normalized := normalizeKey(value)

	statusMap := map[string]TaxStatus{
		"simplified": TaxStatusSimplified,
		"simple":     TaxStatusSimplified,
		"간이":         TaxStatusSimplified,
		"간이과세자":      TaxStatusSimplified,
		"general":    TaxStatusGeneral,
		"일반":         TaxStatusGeneral,
		"일반과세자":      TaxStatusGeneral,
		"exempt":     TaxStatusExempt,
		"면세":         TaxStatusExempt,
		"면세사업자":      TaxStatusExempt,
		"unknown":    TaxStatusUnknown,
		"":           TaxStatusUnknown,
		"모름":         TaxStatusUnknown,
	}

	if mapped, ok := statusMap[normalized]; ok {
		return mapped
	}
	return TaxStatus(normalized)
}

// NormalizeBusinessAge converts loose business age spellings to standard values.
func NormalizeBusinessAge(value string) BusinessAge {
	normalized := normalizeKey(value)

	ageMap := map[string]BusinessAge{
		"under-1y": BusinessAgeUnderOneYear,
		"under_1y": BusinessAgeUnderOneYear,
		"new":      BusinessAgeUnderOneYear,
		"1년미만":     BusinessAgeUnderOneYear,
		"1-3y":     BusinessAgeOneToThree,
		"1_3y":     BusinessAgeOneToThree,
		"1~3년":     BusinessAgeOneToThree,
		"3plus":    BusinessAgeThreePlus,
		"3+":       BusinessAgeThreePlus,
		"3y+":      BusinessAgeThreePlus,
		"3년이상":     BusinessAgeThreePlus,
	}

	if mapped, ok := ageMap[normalized]; ok {
		return mapped
	}
	return BusinessAge(normalized)
}

// NormalizeBookkeeping converts loose bookkeeping spellings to standard values.
func NormalizeBookkeeping(value string) Bookkeeping {
	normalized := normalizeKey(value)

	bookkeepingMap := map[string]Bookkeeping{
		"simple":     BookkeepingSimple,
		"간편장부":       BookkeepingSimple,
		"accountant": BookkeepingAccountant,
		"세무사":        BookkeepingAccountant,
		"none":       BookkeepingNone,
		"없음":         BookkeepingNone,
		"unknown":    BookkeepingUnknown,
		"":           BookkeepingUnknown,
		"모름":         BookkeepingUnknown,
	}

	if mapped, ok := bookkeepingMap[normalized]; ok {
		return mapped
	}
	return Bookkeeping(normalized)
}

// NormalizeInterestArea converts loose interest area spellings to standard values.
// An empty value means general interest.
func NormalizeInterestArea(value string) InterestArea {
	normalized := normalizeKey(value)
	if normalized == "" {
		return InterestAreaGeneral
	}
	return InterestArea(strings.ReplaceAll(normalized, "_", "-"))
}

func normalizeKey(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	return strings.ReplaceAll(normalized, " ", "")
}
