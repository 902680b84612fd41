package utils

import (
	"context"
	"fmt"
	"time"

	"learnhub/actions"

	"github.com/go-resty/resty/v2"
)

// PDFRenderer asks an HTML-to-PDF service to render certificates
type PDFRenderer struct {
	client *resty.Client
	url    string
}

func NewPDFRenderer(url string) *PDFRenderer {
	return &PDFRenderer{client: resty.New().SetTimeout(30 * time.Second), url: url}
}

func (r *PDFRenderer) Render(ctx context.Context, doc actions.CertificateDocument) ([]byte, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/pdf").
		SetBody(map[string]interface{}{
			"template": "certificate",
			"html":     certificateHTML(doc),
			"data":     doc,
		}).
		Post(r.url)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("pdf render failed with status %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

func certificateHTML(doc actions.CertificateDocument) string {
	body := fmt.Sprintf(`
		<p>This certifies that</p>
		<h1>%s</h1>
		<p>has successfully completed <strong>%s</strong></p>
		<p>Instructor: %s</p>
		<div class="info-box">
			Certificate No: <strong>%s</strong><br>
			Verification code: <strong>%s</strong><br>
			Issued on %s
		</div>
	`, doc.StudentName, doc.CourseTitle, doc.InstructorName, doc.CertificateNumber, doc.VerificationCode, doc.IssuedAt.Format("January 2, 2006"))
	return getEmailTemplate("Certificate of Completion", body)
}
