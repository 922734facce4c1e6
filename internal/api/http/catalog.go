package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-academy/internal/course"
	"github.com/mind-engage/mindengage-academy/internal/enrollment"
)

// POST /courses
func CreateCourseHandler(svc *course.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req course.Course
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		c, err := svc.CreateCourse(r.Context(), caller(r), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, c)
	}
}

// GET /courses?q=&limit=50&offset=0
func ListCoursesHandler(svc *course.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		list, err := svc.Courses(r.Context(), caller(r), course.ListFilter{
			Query:  strings.TrimSpace(q.Get("q")),
			Limit:  parseIntDefault(q.Get("limit"), 50),
			Offset: parseIntDefault(q.Get("offset"), 0),
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, list)
	}
}

// GET /courses/{courseID}/lessons
func ListLessonsHandler(svc *course.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.Lessons(r.Context(), caller(r), chi.URLParam(r, "courseID"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, list)
	}
}

// POST /courses/{courseID}/lessons
func AddLessonHandler(svc *course.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req course.Lesson
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		req.CourseID = chi.URLParam(r, "courseID")
		l, err := svc.AddLesson(r.Context(), caller(r), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, l)
	}
}

// POST /courses/{courseID}/enrollments  { "user_id": "..." }
// user_id defaults to the caller.
func EnrollHandler(svc *enrollment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string `json:"user_id"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		e, err := svc.Enroll(r.Context(), caller(r), chi.URLParam(r, "courseID"), strings.TrimSpace(req.UserID))
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, e)
	}
}

// POST /lessons/{lessonID}/complete
func CompleteLessonHandler(svc *enrollment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := svc.CompleteLesson(r.Context(), caller(r), chi.URLParam(r, "lessonID"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, e)
	}
}
