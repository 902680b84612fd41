package actions

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"learnhub/authz"
	"learnhub/events"
	"learnhub/models"
	courseModels "learnhub/models/course"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CertificateIssued struct {
	Certificate courseModels.Certificate `json:"certificate"`
	Created     bool                     `json:"created"`
}

// CertificateVerification is what a public verification lookup reveals
type CertificateVerification struct {
	Valid             bool      `json:"valid"`
	CertificateNumber string    `json:"certificate_number"`
	StudentName       string    `json:"student_name"`
	CourseTitle       string    `json:"course_title"`
	IssuedAt          time.Time `json:"issued_at"`
	CertificateURL    string    `json:"certificate_url,omitempty"`
}

// NewCertificateNumber formats CERT-YYYYMMDD-XXXXXXXX
func NewCertificateNumber(issued time.Time) string {
	return fmt.Sprintf("CERT-%s-%s", issued.UTC().Format("20060102"), shortCode())
}

// NewVerificationCode is eight upper case hex characters of a random UUID
func NewVerificationCode() string {
	return shortCode()
}

func shortCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// IssueCertificate certifies a completed enrollment. A second request returns
// the certificate already issued.
func (a *Actions) IssueCertificate(ctx context.Context, sess *authz.Session, courseID uint) Result {
	var student models.User
	var course courseModels.Course
	res := run("issue certificate", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}
		student = user
		db := a.db.WithContext(ctx)

		enrollment, err := liveEnrollment(db, user.ID, courseID)
		if isNotFound(err) {
			return nil, fail(NotFound, "You are not enrolled in this course")
		}
		if err != nil {
			return nil, err
		}
		if enrollment.Progress < 100 || enrollment.CompletedAt == nil {
			return nil, fail(Validation, "Please complete the course before requesting a certificate")
		}
		if err := db.Preload("Settings").First(&course, courseID).Error; err != nil {
			return nil, err
		}
		if len(course.Settings) > 0 && course.Settings[0].CertificateEnabled != nil && !*course.Settings[0].CertificateEnabled {
			return nil, fail(Validation, "This course does not offer certificates")
		}

		var existing courseModels.Certificate
		err = db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", user.ID, courseID, false).First(&existing).Error
		if err == nil {
			return CertificateIssued{Certificate: existing}, nil
		}
		if !isNotFound(err) {
			return nil, err
		}

		issued := a.clock()
		cert := courseModels.Certificate{
			UserID:            user.ID,
			CourseID:          courseID,
			CertificateNumber: NewCertificateNumber(issued),
			VerificationCode:  NewVerificationCode(),
			StudentName:       user.Name,
			IssuedAt:          issued,
		}
		if err := db.Omit("Course").Create(&cert).Error; err != nil {
			// a concurrent request may have won the unique index
			if ferr := db.Where("user_id = ? AND course_id = ?", user.ID, courseID).First(&existing).Error; ferr == nil {
				return CertificateIssued{Certificate: existing}, nil
			}
			return nil, err
		}

		if url := a.renderCertificate(ctx, db, cert, course); url != "" {
			cert.CertificateURL = url
		}
		log.Printf("[CERTIFICATE] issued %s to user %d for course %d", cert.CertificateNumber, user.ID, courseID)
		return CertificateIssued{Certificate: cert, Created: true}, nil
	})

	if out, ok := res.Data.(CertificateIssued); ok && out.Created {
		a.publish(ctx, events.Event{
			Type:       events.TypeCertificateIssued,
			CourseID:   course.ID,
			CourseName: course.Title,
			UserID:     student.ID,
			Subject:    student.Name,
			Reference:  out.Certificate.CertificateNumber,
			Text:       out.Certificate.VerificationCode,
			Recipients: []string{student.Email},
		})
	}
	return res
}

// renderCertificate renders and stores the PDF when both collaborators are
// configured. Failures leave the certificate without a document.
func (a *Actions) renderCertificate(ctx context.Context, db *gorm.DB, cert courseModels.Certificate, course courseModels.Course) string {
	if a.renderer == nil || a.store == nil {
		return ""
	}
	var instructor models.User
	db.Select("id", "name").First(&instructor, course.InstructorID)

	pdf, err := a.renderer.Render(ctx, CertificateDocument{
		StudentName:       cert.StudentName,
		CourseTitle:       course.Title,
		InstructorName:    instructor.Name,
		CertificateNumber: cert.CertificateNumber,
		VerificationCode:  cert.VerificationCode,
		IssuedAt:          cert.IssuedAt,
	})
	if err != nil {
		log.Printf("[CERTIFICATE] render failed for %s: %v", cert.CertificateNumber, err)
		return ""
	}
	url, err := a.store.Put(ctx, "certificates/"+cert.CertificateNumber+".pdf", bytes.NewReader(pdf), int64(len(pdf)), "application/pdf")
	if err != nil {
		log.Printf("[CERTIFICATE] upload failed for %s: %v", cert.CertificateNumber, err)
		return ""
	}
	if err := db.Model(&cert).Update("certificate_url", url).Error; err != nil {
		log.Printf("[CERTIFICATE] failed to store url for %s: %v", cert.CertificateNumber, err)
		return ""
	}
	return url
}

// VerifyCertificate looks a certificate up by verification code or number
func (a *Actions) VerifyCertificate(ctx context.Context, code string) Result {
	return run("verify certificate", func() (interface{}, error) {
		code = strings.TrimSpace(code)
		if code == "" {
			return nil, fail(Validation, "Verification code is required")
		}
		var cert courseModels.Certificate
		err := a.db.WithContext(ctx).Preload("Course").
			Where("is_deleted = ?", false).
			Where("verification_code = ? OR certificate_number = ?", strings.ToUpper(code), code).
			First(&cert).Error
		if isNotFound(err) {
			return nil, fail(NotFound, "Certificate not found")
		}
		if err != nil {
			return nil, err
		}
		return CertificateVerification{
			Valid:             true,
			CertificateNumber: cert.CertificateNumber,
			StudentName:       cert.StudentName,
			CourseTitle:       cert.Course.Title,
			IssuedAt:          cert.IssuedAt,
			CertificateURL:    cert.CertificateURL,
		}, nil
	})
}

func (a *Actions) ListMyCertificates(ctx context.Context, sess *authz.Session) Result {
	return run("fetch certificates", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}
		certificates := []courseModels.Certificate{}
		err = a.db.WithContext(ctx).Preload("Course").
			Where("user_id = ? AND is_deleted = ?", user.ID, false).
			Order("issued_at DESC").
			Find(&certificates).Error
		if err != nil {
			return nil, err
		}
		return certificates, nil
	})
}
