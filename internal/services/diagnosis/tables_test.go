package diagnosis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"taxfree-engine/internal/models"
)

func TestTablesCoverEveryIndustry(t *testing.T) {
	for _, industry := range models.ValidIndustries() {
		rates, ok := expenseRates[industry]
		assert.True(t, ok, "expense rates for %s", industry)
		assert.Greater(t, rates.Simple, rates.Standard, "simple ratio exceeds standard for %s", industry)

		_, ok = simpleExpenseThresholds[industry]
		assert.True(t, ok, "threshold for %s", industry)

		_, ok = simplifiedVATRates[industry]
		assert.True(t, ok, "simplified VAT rate for %s", industry)

		assert.NotEmpty(t, industry.Label())
	}
}

func TestTaxBrackets_ReturnsCopy(t *testing.T) {
	brackets := TaxBrackets()
	brackets[0].Rate = 1

	assert.Equal(t, 0.06, taxBrackets[0].Rate)
	assert.Len(t, brackets, 8)
}

func TestTaxBrackets_Ordered(t *testing.T) {
	for i := 1; i < len(taxBrackets); i++ {
		assert.Equal(t, taxBrackets[i-1].Max, taxBrackets[i].Min)
		assert.Greater(t, taxBrackets[i].Rate, taxBrackets[i-1].Rate)
	}
	assert.True(t, math.IsInf(taxBrackets[len(taxBrackets)-1].Max, 1))
}

func TestTaxBrackets_ContinuousAtBoundaries(t *testing.T) {
	// quick deductions keep the schedule continuous at every boundary
	for i := 1; i < len(taxBrackets); i++ {
		prev, next := taxBrackets[i-1], taxBrackets[i]
		assert.InDelta(t, prev.Max*prev.Rate-prev.Deduction, prev.Max*next.Rate-next.Deduction, 1e-6, "boundary %v", prev.Max)
	}
}
