package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edupress/edupress/internal/domain"
)

// allCoursesKey caches the aggregate course listing. Any mutation touching
// list-visible fields must drop it.
const allCoursesKey = "courses"

// reviewedCourseTTL bounds entries overwritten by review writes instead of
// letting them live forever.
const reviewedCourseTTL = 7 * 24 * time.Hour

func courseKey(id string) string {
	return "course:" + id
}

// CourseInput is the explicit course payload; nested sub-documents arrive
// typed, never as free-form maps.
type CourseInput struct {
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Price          float64          `json:"price"`
	EstimatedPrice float64          `json:"estimated_price"`
	Thumbnail      domain.Avatar    `json:"thumbnail"`
	Tags           string           `json:"tags"`
	Level          string           `json:"level"`
	DemoURL        string           `json:"demo_url"`
	Benefits       []domain.Benefit `json:"benefits"`
	Prerequisites  []domain.Benefit `json:"prerequisites"`
	Sections       []domain.Section `json:"course_data"`
}

// QuestionInput adds a question to a section's thread.
type QuestionInput struct {
	CourseID  string `json:"course_id"`
	SectionID string `json:"content_id"`
	Question  string `json:"question"`
}

// AnswerInput replies to an existing question.
type AnswerInput struct {
	CourseID   string `json:"course_id"`
	SectionID  string `json:"content_id"`
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

// ReviewInput rates a course the caller is enrolled in.
type ReviewInput struct {
	Rating  float64 `json:"rating"`
	Comment string  `json:"review"`
}

// ReviewReplyInput is an admin reply on an existing review.
type ReviewReplyInput struct {
	CourseID string `json:"course_id"`
	ReviewID string `json:"review_id"`
	Comment  string `json:"comment"`
}

// CourseUsecase serves course reads through the cache and keeps the cache
// coherent on writes. The policy is cache-aside with invalidate-on-write: a
// missed invalidation here is a correctness bug, not a staleness nuisance.
type CourseUsecase struct {
	courseRepo domain.CourseRepository
	cache      domain.CacheRepository
	log        *zap.Logger
}

func NewCourseUsecase(c domain.CourseRepository, cache domain.CacheRepository, log *zap.Logger) *CourseUsecase {
	return &CourseUsecase{
		courseRepo: c,
		cache:      cache,
		log:        log,
	}
}

// Create inserts a new course and drops the aggregate listing entry.
func (u *CourseUsecase) Create(ctx context.Context, input CourseInput) (*domain.Course, error) {
	if input.Name == "" || input.Description == "" {
		return nil, domain.ErrInvalidInput
	}

	course := &domain.Course{
		ID:             uuid.New().String(),
		Name:           input.Name,
		Description:    input.Description,
		Price:          input.Price,
		EstimatedPrice: input.EstimatedPrice,
		Thumbnail:      input.Thumbnail,
		Tags:           input.Tags,
		Level:          input.Level,
		DemoURL:        input.DemoURL,
		Benefits:       input.Benefits,
		Prerequisites:  input.Prerequisites,
		Sections:       sectionsWithIDs(input.Sections),
	}

	if err := u.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}

	u.invalidate(ctx, allCoursesKey)
	return course, nil
}

// Edit overwrites course-level fields and invalidates both the entity entry
// and the aggregate listing before returning.
func (u *CourseUsecase) Edit(ctx context.Context, id string, input CourseInput) (*domain.Course, error) {
	course, err := u.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	course.Name = input.Name
	course.Description = input.Description
	course.Price = input.Price
	course.EstimatedPrice = input.EstimatedPrice
	course.Tags = input.Tags
	course.Level = input.Level
	course.DemoURL = input.DemoURL
	course.Benefits = input.Benefits
	course.Prerequisites = input.Prerequisites
	if input.Thumbnail != (domain.Avatar{}) {
		course.Thumbnail = input.Thumbnail
	}
	if input.Sections != nil {
		course.Sections = sectionsWithIDs(input.Sections)
	}

	if err := u.courseRepo.Save(ctx, course); err != nil {
		return nil, err
	}

	u.invalidate(ctx, courseKey(id), allCoursesKey)
	return course, nil
}

// GetSingle returns the summary projection of one course, populating the
// cache on miss. Cached entries have no expiry; writes evict them.
func (u *CourseUsecase) GetSingle(ctx context.Context, id string) (*domain.Course, error) {
	if data, err := u.cache.Get(ctx, courseKey(id)); err == nil {
		var course domain.Course
		if err := json.Unmarshal(data, &course); err == nil {
			return &course, nil
		}
		u.log.Warn("corrupt cache entry, reloading", zap.String("key", courseKey(id)))
	} else if !errors.Is(err, domain.ErrCacheMiss) {
		u.log.Warn("cache read failed, falling through to store", zap.Error(err))
	}

	course, err := u.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	summary := course.Summary()
	u.store(ctx, courseKey(id), summary, 0)
	return summary, nil
}

// GetAll returns summary projections of every course under the fixed
// aggregate key.
func (u *CourseUsecase) GetAll(ctx context.Context) ([]domain.Course, error) {
	if data, err := u.cache.Get(ctx, allCoursesKey); err == nil {
		var courses []domain.Course
		if err := json.Unmarshal(data, &courses); err == nil {
			return courses, nil
		}
		u.log.Warn("corrupt cache entry, reloading", zap.String("key", allCoursesKey))
	} else if !errors.Is(err, domain.ErrCacheMiss) {
		u.log.Warn("cache read failed, falling through to store", zap.Error(err))
	}

	courses, err := u.courseRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.Course, len(courses))
	for i := range courses {
		summaries[i] = *courses[i].Summary()
	}

	u.store(ctx, allCoursesKey, summaries, 0)
	return summaries, nil
}

// GetContent returns the full sections (video URLs included) of a course the
// caller is enrolled in. Admins can inspect any course.
func (u *CourseUsecase) GetContent(ctx context.Context, caller *domain.User, courseID string) ([]domain.Section, error) {
	if caller.Role != domain.RoleAdmin && !caller.Enrolled(courseID) {
		return nil, domain.ErrForbidden
	}

	course, err := u.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	return course.Sections, nil
}

// AddQuestion appends a question to a section thread. The parent document is
// read, modified and saved whole; concurrent writers race last-write-wins.
func (u *CourseUsecase) AddQuestion(ctx context.Context, caller *domain.User, input QuestionInput) (*domain.Course, error) {
	if input.Question == "" {
		return nil, domain.ErrInvalidInput
	}

	course, err := u.courseRepo.GetByID(ctx, input.CourseID)
	if err != nil {
		return nil, err
	}

	section := findSection(course, input.SectionID)
	if section == nil {
		return nil, domain.ErrNotFound
	}

	section.Questions = append(section.Questions, domain.Comment{
		ID:     uuid.New().String(),
		Author: authorOf(caller),
		Text:   input.Question,
	})

	if err := u.courseRepo.Save(ctx, course); err != nil {
		return nil, err
	}

	u.invalidate(ctx, courseKey(course.ID))
	return course, nil
}

// AddAnswer appends a reply to an existing question.
func (u *CourseUsecase) AddAnswer(ctx context.Context, caller *domain.User, input AnswerInput) (*domain.Course, error) {
	if input.Answer == "" {
		return nil, domain.ErrInvalidInput
	}

	course, err := u.courseRepo.GetByID(ctx, input.CourseID)
	if err != nil {
		return nil, err
	}

	section := findSection(course, input.SectionID)
	if section == nil {
		return nil, domain.ErrNotFound
	}

	var question *domain.Comment
	for i := range section.Questions {
		if section.Questions[i].ID == input.QuestionID {
			question = &section.Questions[i]
			break
		}
	}
	if question == nil {
		return nil, domain.ErrNotFound
	}

	question.Replies = append(question.Replies, domain.Comment{
		ID:     uuid.New().String(),
		Author: authorOf(caller),
		Text:   input.Answer,
	})

	if err := u.courseRepo.Save(ctx, course); err != nil {
		return nil, err
	}

	u.invalidate(ctx, courseKey(course.ID))
	return course, nil
}

// AddReview rates a course the caller is enrolled in and recomputes the
// aggregate rating. The per-course entry is overwritten with a bounded TTL
// and the listing entry dropped, since the rating is list-visible.
func (u *CourseUsecase) AddReview(ctx context.Context, caller *domain.User, courseID string, input ReviewInput) (*domain.Course, error) {
	if caller.Role != domain.RoleAdmin && !caller.Enrolled(courseID) {
		return nil, domain.ErrForbidden
	}

	course, err := u.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	course.Reviews = append(course.Reviews, domain.Review{
		ID:      uuid.New().String(),
		Author:  authorOf(caller),
		Rating:  input.Rating,
		Comment: input.Comment,
	})
	course.RecomputeRating()

	if err := u.courseRepo.Save(ctx, course); err != nil {
		return nil, err
	}

	u.store(ctx, courseKey(course.ID), course.Summary(), reviewedCourseTTL)
	u.invalidate(ctx, allCoursesKey)
	return course, nil
}

// ReplyToReview appends an admin reply to an existing review.
func (u *CourseUsecase) ReplyToReview(ctx context.Context, caller *domain.User, input ReviewReplyInput) (*domain.Course, error) {
	course, err := u.courseRepo.GetByID(ctx, input.CourseID)
	if err != nil {
		return nil, err
	}

	var review *domain.Review
	for i := range course.Reviews {
		if course.Reviews[i].ID == input.ReviewID {
			review = &course.Reviews[i]
			break
		}
	}
	if review == nil {
		return nil, domain.ErrNotFound
	}

	review.Replies = append(review.Replies, domain.Comment{
		ID:     uuid.New().String(),
		Author: authorOf(caller),
		Text:   input.Comment,
	})

	if err := u.courseRepo.Save(ctx, course); err != nil {
		return nil, err
	}

	u.store(ctx, courseKey(course.ID), course.Summary(), reviewedCourseTTL)
	return course, nil
}

// store writes a serialized value into the cache. Failures are logged, not
// fatal: the store already holds the truth and the next read repopulates.
func (u *CourseUsecase) store(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		u.log.Warn("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := u.cache.Set(ctx, key, data, ttl); err != nil {
		u.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// invalidate drops cache entries ahead of the mutating response. A failure
// here is logged loudly because it leaves a stale entry behind until the
// next invalidating write.
func (u *CourseUsecase) invalidate(ctx context.Context, keys ...string) {
	if err := u.cache.Delete(ctx, keys...); err != nil {
		u.log.Error("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func sectionsWithIDs(sections []domain.Section) []domain.Section {
	for i := range sections {
		if sections[i].ID == "" {
			sections[i].ID = uuid.New().String()
		}
	}
	return sections
}

func findSection(course *domain.Course, sectionID string) *domain.Section {
	for i := range course.Sections {
		if course.Sections[i].ID == sectionID {
			return &course.Sections[i]
		}
	}
	return nil
}

func authorOf(user *domain.User) domain.Author {
	return domain.Author{ID: user.ID, Name: user.Name, Avatar: user.Avatar}
}
