// Package ses provides email notification services via AWS SES
package ses

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	appConfig "taxfree-engine/internal/config"
	"taxfree-engine/internal/models"
	"taxfree-engine/internal/services/calendar"
	"taxfree-engine/internal/utils"
)

// EmailAPI is the subset of the SES client used here.
type EmailAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Service handles SES email operations
type Service struct {
	client    EmailAPI
	fromEmail string
}

// EmailParams represents parameters for sending an email
type EmailParams struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
	ReplyTo  string
}

// ReportEmailParams contains the data of a diagnosis report email.
type ReportEmailParams struct {
	To           string
	Diagnosis    *models.Diagnosis
	Upcoming     []calendar.Entry
	ReportURL    string
	DashboardURL string
}

// SendEmailResult contains the result of sending an email
type SendEmailResult struct {
	MessageID string
	SentAt    time.Time
}

// NewService creates an SES service sending from the configured address.
func NewService(ctx context.Context, appCfg *appConfig.Config) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(appCfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewServiceWithClient(ses.NewFromConfig(cfg), appCfg.SESSenderEmail), nil
}

// NewServiceWithClient wires an explicit client.
func NewServiceWithClient(client EmailAPI, fromEmail string) *Service {
	return &Service{client: client, fromEmail: fromEmail}
}

// SendEmail sends a basic email
func (s *Service) SendEmail(ctx context.Context, params EmailParams) (*SendEmailResult, error) {
	if s.fromEmail == "" {
		return nil, fmt.Errorf("failed to send email: sender address not configured")
	}

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{params.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(params.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}

	if params.HTMLBody != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(params.HTMLBody),
			Charset: aws.String("UTF-8"),
		}
	}

	if params.TextBody != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(params.TextBody),
			Charset: aws.String("UTF-8"),
		}
	}

	if params.ReplyTo != "" {
		input.ReplyToAddresses = []string{params.ReplyTo}
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		utils.GetLogger().Error("Failed to send email",
			zap.String("to", params.To),
			zap.String("subject", params.Subject),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	messageID := aws.ToString(result.MessageId)
	utils.GetLogger().Info("Email sent successfully",
		zap.String("to", params.To),
		zap.String("subject", params.Subject),
		zap.String("messageId", messageID),
	)

	return &SendEmailResult{
		MessageID: messageID,
		SentAt:    time.Now(),
	}, nil
}

// SendDiagnosisReport emails the diagnosis summary with the upcoming deadlines.
func (s *Service) SendDiagnosisReport(ctx context.Context, params ReportEmailParams) (*SendEmailResult, error) {
	if params.Diagnosis == nil {
		return nil, fmt.Errorf("failed to send report: %w", models.ErrDiagnosisNotFound)
	}

	htmlBody, err := RenderReportHTML(params)
	if err != nil {
		return nil, fmt.Errorf("failed to render email template: %w", err)
	}

	return s.SendEmail(ctx, EmailParams{
		To:       params.To,
		Subject:  ReportSubject(&params.Diagnosis.Result),
		HTMLBody: htmlBody,
		TextBody: RenderReportText(params),
	})
}

// ReportSubject summarizes the total estimated tax.
func ReportSubject(r *models.DiagnosisResult) string {
	total := r.EstimatedIncomeTax + r.EstimatedVAT + r.EstimatedInsurance
	return fmt.Sprintf("[텍스프리] 세금 진단 결과: 연간 예상 세금 %s만원", humanize.Comma(int64(total)))
}

type reportView struct {
	Recommendation string
	TaxType        string
	IncomeTax      string
	VAT            string
	Insurance      string
	Revenue        string
	TaxableIncome  string
	TaxBracket     string
	TaxCredit      string
	VATMonths      string
	IncomeTaxMonth int
	Upcoming       []calendar.Entry
	ReportURL      string
	DashboardURL   string
}

func newReportView(params ReportEmailParams) reportView {
	r := params.Diagnosis.Result
	months := make([]string, 0, len(r.ReportSchedule.VAT))
	for _, m := range r.ReportSchedule.VAT {
		months = append(months, fmt.Sprintf("%d월", m))
	}

	return reportView{
		Recommendation: r.Recommendation,
		TaxType:        r.TaxType.Label(),
		IncomeTax:      humanize.Comma(int64(r.EstimatedIncomeTax)),
		VAT:            humanize.Comma(int64(r.EstimatedVAT)),
		Insurance:      humanize.Comma(int64(r.EstimatedInsurance)),
		Revenue:        humanize.Comma(int64(r.Detail.AnnualRevenue)),
		TaxableIncome:  humanize.Comma(int64(r.Detail.TaxableIncome)),
		TaxBracket:     r.Detail.TaxBracket,
		TaxCredit:      humanize.Comma(int64(r.Detail.TaxCredit)),
		VATMonths:      strings.Join(months, ", "),
		IncomeTaxMonth: r.ReportSchedule.IncomeTax,
		Upcoming:       params.Upcoming,
		ReportURL:      params.ReportURL,
		DashboardURL:   params.DashboardURL,
	}
}

var reportTemplate = template.Must(template.New("diagnosis_report").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { font-family: 'Pretendard', 'Apple SD Gothic Neo', sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #2563eb; color: white; padding: 28px; border-radius: 10px 10px 0 0; text-align: center; }
        .header h1 { margin: 0; font-size: 22px; }
        .content { background: #f8fafc; padding: 28px; border-radius: 0 0 10px 10px; }
        .card { background: white; border-radius: 8px; padding: 18px; margin: 14px 0; box-shadow: 0 1px 3px rgba(0,0,0,0.08); }
        .amount { font-size: 20px; font-weight: bold; color: #1e3a8a; }
        .label { font-size: 12px; color: #64748b; }
        .event { border-left: 3px solid #2563eb; padding-left: 10px; margin: 10px 0; }
        .urgent { color: #dc2626; font-weight: bold; }
        .cta-button { display: inline-block; background: #2563eb; color: white; padding: 14px 28px; text-decoration: none; border-radius: 8px; font-weight: bold; margin-top: 16px; }
        .footer { text-align: center; margin-top: 28px; color: #94a3b8; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <h1>세금 진단 결과</h1>
        <p>{{.Recommendation}}</p>
    </div>
    <div class="content">
        <div class="card">
            <div class="label">예상 종합소득세 (지방소득세 포함)</div>
            <div class="amount">{{.IncomeTax}}만원</div>
            <div class="label">연매출 {{.Revenue}}만원 · 과세표준 {{.TaxableIncome}}만원 · {{.TaxBracket}} · 세액공제 {{.TaxCredit}}만원</div>
        </div>
        <div class="card">
            <div class="label">예상 부가가치세 ({{.TaxType}})</div>
            <div class="amount">{{.VAT}}만원</div>
        </div>
        <div class="card">
            <div class="label">예상 4대보험 사업주 부담</div>
            <div class="amount">{{.Insurance}}만원</div>
        </div>
        <div class="card">
            <div class="label">신고 일정</div>
            <p>종합소득세 {{.IncomeTaxMonth}}월 · 부가가치세 {{.VATMonths}}</p>
            {{range .Upcoming}}
            <div class="event">
                <strong>{{.Month}}월 {{.Day}}</strong> {{.Title}}
                {{if .DDay.Urgent}}<span class="urgent">{{.DDay.Text}}</span>{{else}}<span>{{.DDay.Text}}</span>{{end}}
            </div>
            {{end}}
        </div>
        {{if .ReportURL}}
        <p><a href="{{.ReportURL}}">진단 리포트 내려받기</a></p>
        {{end}}
        {{if .DashboardURL}}
        <div style="text-align: center;">
            <a href="{{.DashboardURL}}" class="cta-button">대시보드에서 자세히 보기</a>
        </div>
        {{end}}
    </div>
    <div class="footer">
        <p>본 결과는 입력하신 정보를 바탕으로 한 추정치이며 실제 세액과 다를 수 있습니다.</p>
        <p>텍스프리(Tax Free)</p>
    </div>
</body>
</html>`))

// RenderReportHTML renders the HTML body of the report email.
func RenderReportHTML(params ReportEmailParams) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, newReportView(params)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderReportText renders the plain text body of the report email.
func RenderReportText(params ReportEmailParams) string {
	v := newReportView(params)
	var buf bytes.Buffer

	buf.WriteString("세금 진단 결과\n\n")
	buf.WriteString(v.Recommendation + "\n\n")
	fmt.Fprintf(&buf, "- 예상 종합소득세: %s만원 (과세표준 %s만원, %s)\n", v.IncomeTax, v.TaxableIncome, v.TaxBracket)
	fmt.Fprintf(&buf, "- 예상 부가가치세: %s만원 (%s)\n", v.VAT, v.TaxType)
	fmt.Fprintf(&buf, "- 예상 4대보험: %s만원\n\n", v.Insurance)
	fmt.Fprintf(&buf, "신고 일정: 종합소득세 %d월, 부가가치세 %s\n", v.IncomeTaxMonth, v.VATMonths)

	for _, e := range v.Upcoming {
		fmt.Fprintf(&buf, "  %d월 %s  %s [%s]\n", e.Month, e.Day, e.Title, e.DDay.Text)
	}

	if v.ReportURL != "" {
		fmt.Fprintf(&buf, "\n리포트: %s\n", v.ReportURL)
	}
	if v.DashboardURL != "" {
		fmt.Fprintf(&buf, "대시보드: %s\n", v.DashboardURL)
	}

	buf.WriteString("\n본 결과는 추정치이며 실제 세액과 다를 수 있습니다.\n텍스프리(Tax Free)\n")
	return buf.String()
}
