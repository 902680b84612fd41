package actions

import (
	"context"
	"errors"
	"math"
	"strings"

	"learnhub/authz"
	courseModels "learnhub/models/course"
	"learnhub/ordering"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionInput struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
	Points        *int     `json:"points,omitempty"`
	Explanation   *string  `json:"explanation,omitempty"`
}

type QuestionUpdate struct {
	Question      *string  `json:"question,omitempty"`
	Options       []string `json:"options,omitempty"`
	CorrectOption *int     `json:"correct_option,omitempty"`
	Points        *int     `json:"points,omitempty"`
	Explanation   *string  `json:"explanation,omitempty"`
}

// QuestionView is the instructor's view of a question, answer included
type QuestionView struct {
	courseModels.QuizQuestion
	CorrectOption int `json:"correct_option"`
}

type AttemptView struct {
	Attempt   courseModels.QuizAttempt    `json:"attempt"`
	Questions []courseModels.QuizQuestion `json:"questions"`
}

func validateQuestion(question string, options []string, correct, points int) error {
	if strings.TrimSpace(question) == "" {
		return fail(Validation, "Question text is required")
	}
	if len(options) < 2 {
		return fail(Validation, "A question needs at least two options")
	}
	for _, o := range options {
		if strings.TrimSpace(o) == "" {
			return fail(Validation, "Options cannot be empty")
		}
	}
	if correct < 0 || correct >= len(options) {
		return fail(Validation, "Correct option is out of range")
	}
	if points < 1 {
		return fail(Validation, "Points must be at least 1")
	}
	return nil
}

// ScoreAttempt returns the percentage score of a set of answers and the
// total points available. Unanswered questions earn nothing.
func ScoreAttempt(questions []courseModels.QuizQuestion, answers []courseModels.QuizAnswer) (score, maxPoints int) {
	chosen := make(map[uint]int, len(answers))
	for _, ans := range answers {
		chosen[ans.QuestionID] = ans.OptionIndex
	}
	earned := 0
	for _, q := range questions {
		maxPoints += q.Points
		if opt, ok := chosen[q.ID]; ok && opt == q.CorrectOption {
			earned += q.Points
		}
	}
	if maxPoints == 0 {
		return 0, 0
	}
	return int(math.Round(100 * float64(earned) / float64(maxPoints))), maxPoints
}

// PassThreshold is the lesson passing score, else the course passing grade
func PassThreshold(lesson courseModels.Lesson, course courseModels.Course) int {
	if lesson.PassingScore != nil {
		return *lesson.PassingScore
	}
	return course.EffectivePassingGrade()
}

func liveQuestions(tx *gorm.DB, lessonID uint) ([]courseModels.QuizQuestion, error) {
	questions := []courseModels.QuizQuestion{}
	err := tx.Where("lesson_id = ? AND is_deleted = ?", lessonID, false).
		Order("order_index ASC, id ASC").
		Find(&questions).Error
	return questions, err
}

// guardLesson loads a live lesson and checks the caller owns its course
func (a *Actions) guardLesson(ctx context.Context, tx *gorm.DB, principalID, lessonID uint, what string) (courseModels.Lesson, error) {
	var lesson courseModels.Lesson
	err := tx.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return lesson, denied(what)
	}
	if err != nil {
		return lesson, err
	}
	_, err = a.guardCourse(ctx, tx, principalID, lesson.CourseID, what)
	return lesson, err
}

func (a *Actions) AddQuizQuestion(ctx context.Context, sess *authz.Session, lessonID uint, in QuestionInput) Result {
	return run("add question", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}
		points := 1
		if in.Points != nil {
			points = *in.Points
		}
		if err := validateQuestion(in.Question, in.Options, in.CorrectOption, points); err != nil {
			return nil, err
		}

		question := courseModels.QuizQuestion{
			LessonID:      lessonID,
			Question:      strings.TrimSpace(in.Question),
			Options:       datatypes.JSONSlice[string](in.Options),
			CorrectOption: in.CorrectOption,
			Points:        points,
			Explanation:   in.Explanation,
		}
		err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			lesson, err := a.guardLesson(ctx, tx, user.ID, lessonID, "edit this quiz")
			if err != nil {
				return err
			}
			if lesson.ContentType != courseModels.ContentQuiz {
				return fail(Validation, "Questions can only be added to quiz lessons")
			}
			existing, err := liveQuestions(tx, lessonID)
			if err != nil {
				return err
			}
			question.OrderIndex = ordering.NextIndex(questionPositions(existing))
			return tx.Create(&question).Error
		})
		if err != nil {
			return nil, err
		}
		return QuestionView{QuizQuestion: question, CorrectOption: question.CorrectOption}, nil
	})
}

func (a *Actions) UpdateQuizQuestion(ctx context.Context, sess *authz.Session, questionID uint, upd QuestionUpdate) Result {
	return run("update question", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}

		var question courseModels.QuizQuestion
		err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			err := tx.Where("id = ? AND is_deleted = ?", questionID, false).First(&question).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return denied("edit this quiz")
			}
			if err != nil {
				return err
			}
			if _, err := a.guardLesson(ctx, tx, user.ID, question.LessonID, "edit this quiz"); err != nil {
				return err
			}

			if upd.Question != nil {
				question.Question = strings.TrimSpace(*upd.Question)
			}
			if upd.Options != nil {
				question.Options = datatypes.JSONSlice[string](upd.Options)
			}
			if upd.CorrectOption != nil {
				question.CorrectOption = *upd.CorrectOption
			}
			if upd.Points != nil {
				question.Points = *upd.Points
			}
			if upd.Explanation != nil {
				question.Explanation = upd.Explanation
			}
			if err := validateQuestion(question.Question, question.Options, question.CorrectOption, question.Points); err != nil {
				return err
			}
			return tx.Model(&question).Select("question", "options", "correct_option", "points", "explanation").Updates(&question).Error
		})
		if err != nil {
			return nil, err
		}
		return QuestionView{QuizQuestion: question, CorrectOption: question.CorrectOption}, nil
	})
}

func (a *Actions) DeleteQuizQuestion(ctx context.Context, sess *authz.Session, questionID uint) Result {
	return run("delete question", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}
		err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var question courseModels.QuizQuestion
			err := tx.Where("id = ? AND is_deleted = ?", questionID, false).First(&question).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return denied("edit this quiz")
			}
			if err != nil {
				return err
			}
			if _, err := a.guardLesson(ctx, tx, user.ID, question.LessonID, "edit this quiz"); err != nil {
				return err
			}
			if err := tx.Model(&question).Update("is_deleted", true).Error; err != nil {
				return err
			}
			remaining, err := liveQuestions(tx, question.LessonID)
			if err != nil {
				return err
			}
			for _, p := range ordering.Renumber(questionPositions(remaining)) {
				if err := tx.Model(&courseModels.QuizQuestion{}).Where("id = ?", p.ID).
					Update("order_index", p.OrderIndex).Error; err != nil {
					return err
				}
			}
			return nil
		})
		return nil, err
	})
}

// ListQuizQuestions is the owner's view, correct answers included
func (a *Actions) ListQuizQuestions(ctx context.Context, sess *authz.Session, lessonID uint) Result {
	return run("fetch questions", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}
		db := a.db.WithContext(ctx)
		ok, err := a.authz.AuthorizeLessonOwner(ctx, user.ID, lessonID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, denied("view this quiz")
		}
		questions, err := liveQuestions(db, lessonID)
		if err != nil {
			return nil, err
		}
		views := make([]QuestionView, len(questions))
		for i, q := range questions {
			views[i] = QuestionView{QuizQuestion: q, CorrectOption: q.CorrectOption}
		}
		return views, nil
	})
}

func questionPositions(questions []courseModels.QuizQuestion) []ordering.Position {
	out := make([]ordering.Position, len(questions))
	for i, q := range questions {
		out[i] = ordering.Position{ID: q.ID, OrderIndex: q.OrderIndex}
	}
	return out
}

// StartQuizAttempt opens an attempt, or returns the one already open
func (a *Actions) StartQuizAttempt(ctx context.Context, sess *authz.Session, lessonID uint) Result {
	return run("start quiz", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}

		var out AttemptView
		err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var lesson courseModels.Lesson
			err := tx.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fail(NotFound, "Quiz not found")
			}
			if err != nil {
				return err
			}
			if lesson.ContentType != courseModels.ContentQuiz {
				return fail(Validation, "This lesson is not a quiz")
			}
			if _, err := liveEnrollment(tx, user.ID, lesson.CourseID); errors.Is(err, gorm.ErrRecordNotFound) {
				return denied("take this quiz")
			} else if err != nil {
				return err
			}

			questions, err := liveQuestions(tx, lessonID)
			if err != nil {
				return err
			}
			if len(questions) == 0 {
				return fail(Validation, "This quiz has no questions yet")
			}
			out.Questions = questions

			err = tx.Where("user_id = ? AND lesson_id = ? AND status = ?", user.ID, lessonID, courseModels.AttemptInProgress).
				First(&out.Attempt).Error
			if err == nil {
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			_, maxPoints := ScoreAttempt(questions, nil)
			out.Attempt = courseModels.QuizAttempt{
				UserID:    user.ID,
				LessonID:  lessonID,
				CourseID:  lesson.CourseID,
				Status:    courseModels.AttemptInProgress,
				Answers:   datatypes.JSONSlice[courseModels.QuizAnswer]{},
				MaxScore:  maxPoints,
				StartedAt: a.clock(),
			}
			return tx.Create(&out.Attempt).Error
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	})
}

func ownAttempt(tx *gorm.DB, userID, attemptID uint) (courseModels.QuizAttempt, error) {
	var attempt courseModels.QuizAttempt
	err := tx.Where("id = ? AND user_id = ?", attemptID, userID).First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return attempt, denied("access this attempt")
	}
	return attempt, err
}

// AnswerQuestion records or replaces the answer to one question
func (a *Actions) AnswerQuestion(ctx context.Context, sess *authz.Session, attemptID, questionID uint, optionIndex int) Result {
	return run("save answer", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}

		var attempt courseModels.QuizAttempt
		err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			attempt, err = ownAttempt(tx, user.ID, attemptID)
			if err != nil {
				return err
			}
			if attempt.Status != courseModels.AttemptInProgress {
				return fail(Validation, "This attempt has already been submitted")
			}
			var question courseModels.QuizQuestion
			err := tx.Where("id = ? AND lesson_id = ? AND is_deleted = ?", questionID, attempt.LessonID, false).
				First(&question).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fail(Validation, "Question does not belong to this quiz")
			}
			if err != nil {
				return err
			}
			if optionIndex < 0 || optionIndex >= len(question.Options) {
				return fail(Validation, "Option is out of range")
			}

			answers := make(datatypes.JSONSlice[courseModels.QuizAnswer], 0, len(attempt.Answers)+1)
			for _, ans := range attempt.Answers {
				if ans.QuestionID != questionID {
					answers = append(answers, ans)
				}
			}
			answers = append(answers, courseModels.QuizAnswer{QuestionID: questionID, OptionIndex: optionIndex})
			attempt.Answers = answers

			result := tx.Model(&courseModels.QuizAttempt{}).
				Where("id = ? AND status = ?", attempt.ID, courseModels.AttemptInProgress).
				Update("answers", answers)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fail(Validation, "This attempt has already been submitted")
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return attempt, nil
	})
}

// SubmitQuizAttempt scores an attempt exactly once. A pass completes the
// quiz lesson.
func (a *Actions) SubmitQuizAttempt(ctx context.Context, sess *authz.Session, attemptID uint) Result {
	return run("submit quiz", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}

		var attempt courseModels.QuizAttempt
		err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			attempt, err = ownAttempt(tx, user.ID, attemptID)
			if err != nil {
				return err
			}
			if attempt.Status != courseModels.AttemptInProgress {
				return fail(Validation, "This attempt has already been submitted")
			}

			var lesson courseModels.Lesson
			if err := tx.First(&lesson, attempt.LessonID).Error; err != nil {
				return err
			}
			var course courseModels.Course
			if err := tx.Preload("Settings").First(&course, lesson.CourseID).Error; err != nil {
				return err
			}
			questions, err := liveQuestions(tx, attempt.LessonID)
			if err != nil {
				return err
			}

			score, maxPoints := ScoreAttempt(questions, attempt.Answers)
			passed := score >= PassThreshold(lesson, course)
			submittedAt := a.clock()
			elapsed := int(submittedAt.Sub(attempt.StartedAt).Seconds())
			if elapsed < 0 {
				elapsed = 0
			}

			result := tx.Model(&courseModels.QuizAttempt{}).
				Where("id = ? AND status = ?", attempt.ID, courseModels.AttemptInProgress).
				Updates(map[string]interface{}{
					"status":          courseModels.AttemptSubmitted,
					"score":           score,
					"max_score":       maxPoints,
					"passed":          passed,
					"submitted_at":    submittedAt,
					"elapsed_seconds": elapsed,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fail(Validation, "This attempt has already been submitted")
			}

			if passed {
				if _, err := liveEnrollment(tx, user.ID, lesson.CourseID); err == nil {
					if err := a.markLessonComplete(tx, user.ID, lesson); err != nil {
						return err
					}
				} else if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
			}
			return tx.First(&attempt, attempt.ID).Error
		})
		if err != nil {
			return nil, err
		}
		return attempt, nil
	})
}

func (a *Actions) GetQuizAttempt(ctx context.Context, sess *authz.Session, attemptID uint) Result {
	return run("fetch attempt", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}
		return ownAttempt(a.db.WithContext(ctx), user.ID, attemptID)
	})
}
