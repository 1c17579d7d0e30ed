package diagnosis

import (
	"time"

	"github.com/google/uuid"

	"taxfree-engine/internal/models"
)

// NewRecord diagnoses answers and wraps the result in a storable Diagnosis with a
// fresh id. Unlike Calculate it reads the clock.
func NewRecord(answers models.DiagnosisAnswers, source models.DiagnosisSource) *models.Diagnosis {
	result := Calculate(answers)
	return &models.Diagnosis{
		ID:        uuid.NewString(),
		Answers:   result.Answers,
		Result:    result,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
}
