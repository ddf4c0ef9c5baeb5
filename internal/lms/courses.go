package lms

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

func (c *defaultClient) GetCourse(ctx context.Context, id int64) (*Course, error) {
	var course Course
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("/courses/"+strconv.FormatInt(id, 10), nil), nil, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *defaultClient) CreateCourse(ctx context.Context, req CreateCourseRequest) (*Course, error) {
	form := url.Values{
		"course[name]":        {req.Name},
		"course[course_code]": {req.CourseCode},
	}
	if req.SISCourseID != "" {
		form.Set("course[sis_course_id]", req.SISCourseID)
	}
	if req.EnrollmentTermID != 0 {
		form.Set("course[term_id]", strconv.FormatInt(req.EnrollmentTermID, 10))
	}

	var course Course
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint("/accounts/"+c.accountID+"/courses", nil), form, &course); err != nil {
		return nil, fmt.Errorf("failed to create course %q: %w", req.Name, err)
	}
	slog.Info("Created LMS course", "institution", c.institution, "course_id", course.ID, "name", course.Name)
	return &course, nil
}

func (c *defaultClient) DeleteCourse(ctx context.Context, id int64) error {
	target := c.endpoint("/courses/"+strconv.FormatInt(id, 10), url.Values{"event": {"delete"}})
	if err := c.doJSON(ctx, http.MethodDelete, target, nil, nil); err != nil {
		return fmt.Errorf("failed to delete course %d: %w", id, err)
	}
	slog.Info("Deleted LMS course", "institution", c.institution, "course_id", id)
	return nil
}

func (c *defaultClient) ListCoursesByEnrollmentTerm(ctx context.Context, termID int64) ([]Course, error) {
	query := url.Values{
		"per_page":           {pageSize},
		"enrollment_term_id": {strconv.FormatInt(termID, 10)},
		"state[]":            {"created", "claimed", "available"},
	}
	courses, err := getAll[Course](ctx, c, c.endpoint("/accounts/"+c.accountID+"/courses", query))
	if err != nil {
		return nil, fmt.Errorf("failed to list courses of enrollment term %d: %w", termID, err)
	}
	return courses, nil
}
