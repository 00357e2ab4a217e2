package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/edupress/edupress/internal/domain"
	"github.com/edupress/edupress/internal/usecase"
)

// CourseHandler serves course reads through the cache and routes mutations
// through the invalidating usecase paths.
type CourseHandler struct {
	usecase *usecase.CourseUsecase
}

// NewCourseHandler registers the course routes. Creation, editing and
// review replies are admin-only; Q&A and reviews need any authenticated
// identity; summary reads are public.
func NewCourseHandler(e *echo.Group, u *usecase.CourseUsecase, sessions domain.SessionRepository, accessSecret string) {
	handler := &CourseHandler{usecase: u}
	auth := Authenticated(sessions, accessSecret)
	admin := RequireRoles(domain.RoleAdmin)

	e.POST("/create-course", handler.Create, auth, admin)
	e.PUT("/edit-course/:id", handler.Edit, auth, admin)
	e.GET("/get-course/:id", handler.GetSingle)
	e.GET("/get-courses", handler.GetAll)
	e.GET("/get-course-content/:id", handler.GetContent, auth)
	e.PUT("/add-question", handler.AddQuestion, auth)
	e.PUT("/add-answer", handler.AddAnswer, auth)
	e.PUT("/add-review/:id", handler.AddReview, auth)
	e.PUT("/add-reply", handler.ReplyToReview, auth, admin)
}

// Create inserts a new course document.
func (h *CourseHandler) Create(c echo.Context) error {
	var input usecase.CourseInput
	if err := c.Bind(&input); err != nil {
		return fail(c, domain.ErrInvalidInput)
	}

	course, err := h.usecase.Create(c.Request().Context(), input)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "course": course})
}

// Edit overwrites course-level fields.
func (h *CourseHandler) Edit(c echo.Context) error {
	var input usecase.CourseInput
	if err := c.Bind(&input); err != nil {
		return fail(c, domain.ErrInvalidInput)
	}

	course, err := h.usecase.Edit(c.Request().Context(), c.Param("id"), input)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "course": course})
}

// GetSingle returns the cached summary projection of one course.
func (h *CourseHandler) GetSingle(c echo.Context) error {
	course, err := h.usecase.GetSingle(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "course": course})
}

// GetAll returns the cached summary listing of every course.
func (h *CourseHandler) GetAll(c echo.Context) error {
	courses, err := h.usecase.GetAll(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "courses": courses})
}

// GetContent returns the full sections of a course the caller is enrolled in.
func (h *CourseHandler) GetContent(c echo.Context) error {
	sections, err := h.usecase.GetContent(c.Request().Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "content": sections})
}

// AddQuestion appends a question to a section thread.
func (h *CourseHandler) AddQuestion(c echo.Context) error {
	var input usecase.QuestionInput
	if err := c.Bind(&input); err != nil {
		return fail(c, domain.ErrInvalidInput)
	}

	course, err := h.usecase.AddQuestion(c.Request().Context(), identityFrom(c), input)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "course": course})
}

// AddAnswer replies to an existing question.
func (h *CourseHandler) AddAnswer(c echo.Context) error {
	var input usecase.AnswerInput
	if err := c.Bind(&input); err != nil {
		return fail(c, domain.ErrInvalidInput)
	}

	course, err := h.usecase.AddAnswer(c.Request().Context(), identityFrom(c), input)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "course": course})
}

// AddReview rates the course in the URL.
func (h *CourseHandler) AddReview(c echo.Context) error {
	var input usecase.ReviewInput
	if err := c.Bind(&input); err != nil {
		return fail(c, domain.ErrInvalidInput)
	}

	course, err := h.usecase.AddReview(c.Request().Context(), identityFrom(c), c.Param("id"), input)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "course": course})
}

// ReplyToReview appends an admin reply to a review.
func (h *CourseHandler) ReplyToReview(c echo.Context) error {
	var input usecase.ReviewReplyInput
	if err := c.Bind(&input); err != nil {
		return fail(c, domain.ErrInvalidInput)
	}

	course, err := h.usecase.ReplyToReview(c.Request().Context(), identityFrom(c), input)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "course": course})
}
