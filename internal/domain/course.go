package domain

import (
	"context"
	"time"
)

// Author is the slim identity snapshot embedded in questions and reviews.
type Author struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar Avatar `json:"avatar"`
}

// Link is an external resource attached to a course section.
type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Comment is a question or a reply inside a section's Q&A thread.
type Comment struct {
	ID      string    `json:"id"`
	Author  Author    `json:"user"`
	Text    string    `json:"question"`
	Replies []Comment `json:"question_replies,omitempty"`
}

// Review is a course-level rating with an optional admin reply thread.
type Review struct {
	ID      string    `json:"id"`
	Author  Author    `json:"user"`
	Rating  float64   `json:"rating"`
	Comment string    `json:"comment"`
	Replies []Comment `json:"comment_replies,omitempty"`
}

// Section is one content unit of a course. Video URL, suggestions, questions
// and links are the heavy sub-fields stripped from summary projections.
type Section struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"video_url"`
	VideoSection string    `json:"video_section"`
	VideoLength  int       `json:"video_length"`
	VideoPlayer  string    `json:"video_player"`
	Suggestions  []string  `json:"suggestions"`
	Questions    []Comment `json:"questions"`
	Links        []Link    `json:"links"`
}

// Benefit is a single bullet in the benefits/prerequisites lists.
type Benefit struct {
	Title string `json:"title"`
}

// Course is the aggregate course document. Nested sub-document mutations are
// read-modify-write on the whole document; concurrent writers race with
// last-write-wins (see CourseRepository.Save).
type Course struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Price          float64   `json:"price"`
	EstimatedPrice float64   `json:"estimated_price,omitempty"`
	Thumbnail      Avatar    `json:"thumbnail"`
	Tags           string    `json:"tags"`
	Level          string    `json:"level"`
	DemoURL        string    `json:"demo_url"`
	Benefits       []Benefit `json:"benefits"`
	Prerequisites  []Benefit `json:"prerequisites"`
	Reviews        []Review  `json:"reviews"`
	Sections       []Section `json:"course_data"`
	Rating         float64   `json:"rating"`
	Purchased      int       `json:"purchased"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Summary returns the read-optimized projection served to unauthenticated
// course listings: sections keep their metadata but drop video URLs,
// suggestions, Q&A threads and links.
func (c *Course) Summary() *Course {
	out := *c
	out.Sections = make([]Section, len(c.Sections))
	for i, s := range c.Sections {
		s.VideoURL = ""
		s.Suggestions = nil
		s.Questions = nil
		s.Links = nil
		out.Sections[i] = s
	}
	return &out
}

// RecomputeRating averages all review ratings into Course.Rating.
func (c *Course) RecomputeRating() {
	if len(c.Reviews) == 0 {
		c.Rating = 0
		return
	}
	var sum float64
	for _, r := range c.Reviews {
		sum += r.Rating
	}
	c.Rating = sum / float64(len(c.Reviews))
}

// CourseRepository defines the contract for course document persistence.
// Save persists the whole document; there is no per-field update.
type CourseRepository interface {
	GetByID(ctx context.Context, id string) (*Course, error)
	List(ctx context.Context) ([]Course, error)
	Create(ctx context.Context, course *Course) error
	Save(ctx context.Context, course *Course) error
}
