package chat

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"taxfree-engine/internal/models"
	"taxfree-engine/internal/services/knowledge"
)

// MaxHistory is the number of most recent history messages sent to the model.
const MaxHistory = 10

const basePrompt = `당신은 텍스프리(Tax Free)의 AI 세무 상담사입니다. 법인이 아닌 개인사업자와 프리랜서를 대상으로 친절하고 이해하기 쉽게 답변해주세요.

주요 역할:
- 종합소득세, 부가가치세, 경비처리, 사업자등록, 4대보험 세무 상담
- 복잡한 세무 용어를 쉬운 말로 설명하고 구체적인 예시를 들어 답변

답변 시 주의사항:
- 불확실한 내용은 명시하고 개인별 상황에 따라 다를 수 있음을 안내
- 필요시 국세청(126) 또는 세무사 상담 권유
- 금액은 만원 단위로 명확하게 표시`

// BuildPrompt assembles the system instruction, the capped history and the question.
// The diagnosis and the knowledge entries are optional.
func BuildPrompt(req models.ChatRequest, result *models.DiagnosisResult, entries []knowledge.Entry) Prompt {
	var sb strings.Builder
	sb.WriteString(basePrompt)

	if result != nil {
		sb.WriteString("\n\n")
		sb.WriteString(diagnosisSummary(result))
	}

	if len(entries) > 0 {
		sb.WriteString("\n\n[참고 자료]")
		for _, e := range entries {
			fmt.Fprintf(&sb, "\n### %s\n%s", e.Category, e.Content)
		}
	}

	return Prompt{
		System:  sb.String(),
		History: recentHistory(req.Messages),
		Message: req.Message,
	}
}

func diagnosisSummary(r *models.DiagnosisResult) string {
	vatMonths := make([]string, 0, len(r.ReportSchedule.VAT))
	for _, m := range r.ReportSchedule.VAT {
		vatMonths = append(vatMonths, fmt.Sprintf("%d", m))
	}

	lines := []string{
		"[사용자 진단 정보]",
		"- 업종: " + r.Answers.Industry.Label(),
		fmt.Sprintf("- 연매출: %s만원", humanize.Comma(int64(r.Detail.AnnualRevenue))),
		fmt.Sprintf("- 직원 수: %d명", r.EmployeeCount()),
		"- 사업 기간: " + string(r.Answers.BusinessAge),
		"- 관심 분야: " + r.Answers.InterestArea.Label(),
		"- 추천: " + r.Recommendation,
		fmt.Sprintf("- 예상 종합소득세: %s만원 (과세표준 %s만원, %s)",
			humanize.Comma(int64(r.EstimatedIncomeTax)), humanize.Comma(int64(r.Detail.TaxableIncome)), r.Detail.TaxBracket),
		fmt.Sprintf("- 예상 부가가치세: %s만원", humanize.Comma(int64(r.EstimatedVAT))),
		fmt.Sprintf("- 예상 4대보험: %s만원", humanize.Comma(int64(r.EstimatedInsurance))),
		"- 세금 유형: " + r.TaxType.Label(),
		fmt.Sprintf("- 신고 일정: 종합소득세 %d월, 부가가치세 %s월", r.ReportSchedule.IncomeTax, strings.Join(vatMonths, ", ")),
		"",
		"위 진단 정보를 참고하여 사용자에게 맞춤형 답변을 제공하세요.",
	}
	return strings.Join(lines, "\n")
}

func recentHistory(messages []models.ChatMessage) []models.ChatMessage {
	if len(messages) > MaxHistory {
		messages = messages[len(messages)-MaxHistory:]
	}
	out := make([]models.ChatMessage, len(messages))
	copy(out, messages)
	return out
}
