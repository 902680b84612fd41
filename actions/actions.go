// Package actions is the application core: every public operation resolves
// the caller, checks ownership, applies the mapper and ordering rules,
// persists, and reports a Result. No action returns a raw error or panics.
package actions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"learnhub/authz"
	"learnhub/events"
	"learnhub/mapper"
	"learnhub/models"
	courseModels "learnhub/models/course"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ErrorKind int

const (
	Unauthorized ErrorKind = iota + 1
	PermissionDenied
	Validation
	Persistence
	NotFound
)

func (k ErrorKind) String() string {
	switch k {
	case Unauthorized:
		return "unauthorized"
	case PermissionDenied:
		return "permission_denied"
	case Validation:
		return "validation"
	case Persistence:
		return "persistence"
	case NotFound:
		return "not_found"
	}
	return "unknown"
}

func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Error is a classified failure with a message safe to show to the caller
type Error struct {
	Kind   ErrorKind `json:"kind"`
	Detail string    `json:"detail"`
}

func (e *Error) Error() string { return e.Detail }

// Result is the envelope every action returns
type Result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Kind is the error kind of a failed result, 0 on success
func (r Result) Kind() ErrorKind {
	if r.Error == nil {
		return 0
	}
	return r.Error.Kind
}

func fail(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func unauthorized() *Error {
	return &Error{Kind: Unauthorized, Detail: "Unauthorized"}
}

func denied(what string) *Error {
	return &Error{Kind: PermissionDenied, Detail: "You do not have permission to " + what}
}

// persistence logs the store error and hides it behind a generic message
func persistence(op string, err error) *Error {
	log.Printf("[ACTIONS] failed to %s: %v", op, err)
	return &Error{Kind: Persistence, Detail: "Failed to " + op}
}

// ObjectStore keeps uploaded binaries and returns their public URL
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// Indexer maintains the published-course search index
type Indexer interface {
	IndexCourse(ctx context.Context, c courseModels.Course) error
	RemoveCourse(ctx context.Context, courseID uint) error
	SearchCourses(ctx context.Context, query string, limit int) ([]uint, error)
}

type CertificateDocument struct {
	StudentName       string    `json:"student_name"`
	CourseTitle       string    `json:"course_title"`
	InstructorName    string    `json:"instructor_name"`
	CertificateNumber string    `json:"certificate_number"`
	VerificationCode  string    `json:"verification_code"`
	IssuedAt          time.Time `json:"issued_at"`
}

// CertificateRenderer produces the PDF bytes of a certificate
type CertificateRenderer interface {
	Render(ctx context.Context, doc CertificateDocument) ([]byte, error)
}

type Actions struct {
	db        *gorm.DB
	authz     *authz.Authorizer
	mapper    mapper.Mapper
	publisher events.Publisher
	indexer   Indexer
	store     ObjectStore
	renderer  CertificateRenderer
	clock     func() time.Time
}

type Option func(*Actions)

func WithPublisher(p events.Publisher) Option { return func(a *Actions) { a.publisher = p } }

func WithIndexer(i Indexer) Option { return func(a *Actions) { a.indexer = i } }

func WithObjectStore(s ObjectStore) Option { return func(a *Actions) { a.store = s } }

func WithRenderer(r CertificateRenderer) Option { return func(a *Actions) { a.renderer = r } }

func WithDefaultLanguage(lang string) Option {
	return func(a *Actions) { a.mapper = mapper.Mapper{DefaultLanguage: lang} }
}

func WithClock(clock func() time.Time) Option { return func(a *Actions) { a.clock = clock } }

func New(db *gorm.DB, opts ...Option) *Actions {
	a := &Actions{
		db:        db,
		authz:     authz.New(db),
		publisher: events.Nop{},
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// run executes fn and folds its outcome into a Result. A panic inside fn is
// reported as a persistence failure.
func run(op string, fn func() (interface{}, error)) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ACTIONS] panic during %s: %v", op, r)
			res = Result{Error: &Error{Kind: Persistence, Detail: "Failed to " + op}}
		}
	}()

	data, err := fn()
	if err != nil {
		var ae *Error
		if !errors.As(err, &ae) {
			ae = persistence(op, err)
		}
		return Result{Error: ae}
	}
	return Result{Success: true, Data: data}
}

// principal resolves the session into the acting user
func (a *Actions) principal(ctx context.Context, sess *authz.Session) (models.User, error) {
	if sess == nil || sess.Email == "" {
		return models.User{}, unauthorized()
	}
	user, err := a.authz.ResolvePrincipal(ctx, sess.Email)
	if errors.Is(err, authz.ErrPrincipalNotFound) {
		return user, unauthorized()
	}
	if err != nil {
		return user, persistence("verify session", err)
	}
	return user, nil
}

// lockCourse takes a row lock on a live course so that writes to its lessons
// serialize. Missing courses report gorm.ErrRecordNotFound.
func lockCourse(tx *gorm.DB, courseID uint) (courseModels.Course, error) {
	var course courseModels.Course
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND is_deleted = ?", courseID, false).
		First(&course).Error
	return course, err
}

// guardCourse locks the course and checks ownership inside tx.
// A missing course and a foreign course are the same denial.
func (a *Actions) guardCourse(ctx context.Context, tx *gorm.DB, principalID, courseID uint, what string) (courseModels.Course, error) {
	course, err := lockCourse(tx, courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return course, denied(what)
	}
	if err != nil {
		return course, err
	}
	ok, err := a.authz.WithTx(tx).AuthorizeCourseOwner(ctx, principalID, courseID)
	if err != nil {
		return course, err
	}
	if !ok {
		return course, denied(what)
	}
	return course, nil
}

// publish sends an event after commit; delivery failures never fail the action
func (a *Actions) publish(ctx context.Context, e events.Event) {
	e.OccurredAt = a.clock()
	if err := a.publisher.Publish(ctx, e); err != nil {
		log.Printf("[EVENTS] failed to publish %s: %v", e.Type, err)
	}
}

// enrolledEmails lists the emails of the students enrolled in a course
func (a *Actions) enrolledEmails(ctx context.Context, courseIDs ...uint) []string {
	var emails []string
	err := a.db.WithContext(ctx).Model(&models.User{}).
		Distinct("users.email").
		Joins("JOIN enrollments ON enrollments.user_id = users.id").
		Where("enrollments.course_id IN ? AND enrollments.is_deleted = ? AND users.is_deleted = ?", courseIDs, false, false).
		Pluck("users.email", &emails).Error
	if err != nil {
		log.Printf("[ACTIONS] failed to load recipients: %v", err)
	}
	return emails
}

// filterFields keeps only allow-listed keys
func filterFields(fields map[string]interface{}, allow map[string]bool) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if allow[k] {
			out[k] = v
		}
	}
	return out
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
