package actions

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	courseModels "learnhub/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) completedEnrollment() {
	e := f.enroll(f.student)
	require.NoError(f.t, f.db.Model(&e).Updates(map[string]interface{}{
		"progress":     100,
		"status":       courseModels.EnrollmentCompleted,
		"completed_at": fixedNow,
	}).Error)
}

func TestCertificateCodes(t *testing.T) {
	number := NewCertificateNumber(time.Date(2026, 1, 2, 23, 0, 0, 0, time.UTC))
	assert.Regexp(t, regexp.MustCompile(`^CERT-20260102-[0-9A-F]{8}$`), number)

	code := NewVerificationCode()
	assert.Len(t, code, 8)
	assert.Equal(t, strings.ToUpper(code), code)
	assert.NotEqual(t, code, NewVerificationCode())
}

func TestIssueCertificateRequiresCompletion(t *testing.T) {
	f := setup(t)
	sess := sessionOf(f.student)

	requireFailure(t, f.actions.IssueCertificate(f.ctx, sess, f.course.ID), NotFound)

	f.enroll(f.student)
	res := f.actions.IssueCertificate(f.ctx, sess, f.course.ID)
	requireFailure(t, res, Validation)
	assert.Empty(t, f.publisher.ofType("certificate.issued"))
}

func TestIssueCertificateOnce(t *testing.T) {
	store := &fakeStore{}
	renderer := &fakeRenderer{}
	f := setup(t, WithObjectStore(store), WithRenderer(renderer))
	f.completedEnrollment()
	sess := sessionOf(f.student)

	first := f.actions.IssueCertificate(f.ctx, sess, f.course.ID)
	require.True(t, first.Success, first.Error)
	issued := first.Data.(CertificateIssued)
	assert.True(t, issued.Created)
	assert.Equal(t, "https://files.example.com/certificates/"+issued.Certificate.CertificateNumber+".pdf", issued.Certificate.CertificateURL)
	require.Len(t, renderer.docs, 1)
	assert.Equal(t, "Go in Practice", renderer.docs[0].CourseTitle)
	assert.Equal(t, f.instructor.Name, renderer.docs[0].InstructorName)

	second := f.actions.IssueCertificate(f.ctx, sess, f.course.ID)
	require.True(t, second.Success, second.Error)
	assert.False(t, second.Data.(CertificateIssued).Created)
	assert.Equal(t, issued.Certificate.ID, second.Data.(CertificateIssued).Certificate.ID)
	assert.Equal(t, issued.Certificate.CertificateURL, second.Data.(CertificateIssued).Certificate.CertificateURL)

	sent := f.publisher.ofType("certificate.issued")
	require.Len(t, sent, 1)
	assert.Equal(t, issued.Certificate.CertificateNumber, sent[0].Reference)
	assert.NotEmpty(t, sent[0].Text)
	assert.Equal(t, issued.Certificate.VerificationCode, sent[0].Text)
	assert.Equal(t, []string{f.student.Email}, sent[0].Recipients)
}

func TestIssueCertificateSurvivesUploadFailure(t *testing.T) {
	f := setup(t, WithObjectStore(&fakeStore{err: errors.New("bucket gone")}), WithRenderer(&fakeRenderer{}))
	f.completedEnrollment()

	res := f.actions.IssueCertificate(f.ctx, sessionOf(f.student), f.course.ID)
	require.True(t, res.Success, res.Error)
	assert.Empty(t, res.Data.(CertificateIssued).Certificate.CertificateURL)
}

func TestIssueCertificateHonoursCourseSetting(t *testing.T) {
	f := setup(t)
	f.settings(courseModels.CourseSettings{CertificateEnabled: boolPtr(false)})
	f.completedEnrollment()

	requireFailure(t, f.actions.IssueCertificate(f.ctx, sessionOf(f.student), f.course.ID), Validation)
}

func TestVerifyCertificate(t *testing.T) {
	f := setup(t)
	f.completedEnrollment()
	cert := f.actions.IssueCertificate(f.ctx, sessionOf(f.student), f.course.ID).Data.(CertificateIssued).Certificate

	byCode := f.actions.VerifyCertificate(f.ctx, strings.ToLower(cert.VerificationCode))
	require.True(t, byCode.Success, byCode.Error)
	v := byCode.Data.(CertificateVerification)
	assert.True(t, v.Valid)
	assert.Equal(t, "Go in Practice", v.CourseTitle)
	assert.Equal(t, f.student.Name, v.StudentName)

	byNumber := f.actions.VerifyCertificate(f.ctx, cert.CertificateNumber)
	require.True(t, byNumber.Success, byNumber.Error)

	requireFailure(t, f.actions.VerifyCertificate(f.ctx, "NOPE1234"), NotFound)

	mine := f.actions.ListMyCertificates(f.ctx, sessionOf(f.student))
	require.Len(t, mine.Data.([]courseModels.Certificate), 1)
}
