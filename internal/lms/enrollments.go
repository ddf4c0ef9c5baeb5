package lms

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

func enrollmentQuery(filter EnrollmentFilter) url.Values {
	return url.Values{
		"per_page": {pageSize},
		"type[]":   filter.types(),
		"state[]":  filter.states(),
	}
}

func (c *defaultClient) ListCourseEnrollments(ctx context.Context, courseID int64, filter EnrollmentFilter) ([]Enrollment, error) {
	query := enrollmentQuery(filter)
	query.Set("role[]", StudentEnrollment)
	target := c.endpoint("/courses/"+strconv.FormatInt(courseID, 10)+"/enrollments", query)

	enrollments, err := getAll[Enrollment](ctx, c, target)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments of course %d: %w", courseID, err)
	}
	return enrollments, nil
}

func (c *defaultClient) ListSectionEnrollments(ctx context.Context, sectionID int64, filter EnrollmentFilter) ([]Enrollment, error) {
	target := c.endpoint("/sections/"+strconv.FormatInt(sectionID, 10)+"/enrollments", enrollmentQuery(filter))

	enrollments, err := getAll[Enrollment](ctx, c, target)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments of section %d: %w", sectionID, err)
	}
	return enrollments, nil
}

func (c *defaultClient) ListUserEnrollments(ctx context.Context, sisLoginID, term string) ([]Enrollment, error) {
	target := c.endpoint("/users/"+url.PathEscape(sisUserPrefix+sisLoginID)+"/enrollments",
		enrollmentQuery(EnrollmentFilter{}))

	all, err := getAll[Enrollment](ctx, c, target)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments of user %s: %w", sisLoginID, err)
	}

	var result []Enrollment
	for _, e := range all {
		enrollmentTerm, _, ok := e.SectionKey()
		// Staff rows are never sync targets
		if ok && enrollmentTerm == term && e.EnrollmentState == StateActive && e.Type == StudentEnrollment {
			result = append(result, e)
		}
	}
	return result, nil
}

func (c *defaultClient) GetEnrollment(ctx context.Context, id int64) (*Enrollment, error) {
	var e Enrollment
	target := c.endpoint("/accounts/"+c.accountID+"/enrollments/"+strconv.FormatInt(id, 10), nil)
	if err := c.doJSON(ctx, http.MethodGet, target, nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *defaultClient) EnrollStudent(ctx context.Context, sectionID, userID int64) (*Enrollment, error) {
	form := url.Values{
		"enrollment[user_id]":          {strconv.FormatInt(userID, 10)},
		"enrollment[type]":             {StudentEnrollment},
		"enrollment[enrollment_state]": {StateActive},
		"enrollment[notify]":           {"false"},
	}

	var e Enrollment
	target := c.endpoint("/sections/"+strconv.FormatInt(sectionID, 10)+"/enrollments", nil)
	if err := c.doJSON(ctx, http.MethodPost, target, form, &e); err != nil {
		return nil, fmt.Errorf("failed to enroll user %d into section %d: %w", userID, sectionID, err)
	}
	slog.Debug("Enrolled student into LMS section",
		"institution", c.institution, "section_id", sectionID, "user_id", userID, "enrollment_id", e.ID)
	return &e, nil
}

func (c *defaultClient) DropStudent(ctx context.Context, enrollment Enrollment) (*Enrollment, error) {
	return c.endEnrollment(ctx, enrollment, "inactivate")
}

func (c *defaultClient) DeleteStudent(ctx context.Context, enrollment Enrollment) (*Enrollment, error) {
	return c.endEnrollment(ctx, enrollment, "delete")
}

func (c *defaultClient) endEnrollment(ctx context.Context, enrollment Enrollment, task string) (*Enrollment, error) {
	target := c.endpoint(fmt.Sprintf("/courses/%d/enrollments/%d", enrollment.CourseID, enrollment.ID),
		url.Values{"task": {task}})

	var e Enrollment
	if err := c.doJSON(ctx, http.MethodDelete, target, nil, &e); err != nil {
		return nil, fmt.Errorf("failed to %s enrollment %d: %w", task, enrollment.ID, err)
	}
	slog.Debug("Ended LMS enrollment",
		"institution", c.institution, "task", task, "enrollment_id", enrollment.ID, "course_id", enrollment.CourseID)
	return &e, nil
}
