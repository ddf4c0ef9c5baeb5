package lms

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
)

func (c *defaultClient) CreateSection(ctx context.Context, courseID int64, name, term, crn string) (*Section, error) {
	form := url.Values{
		"course_section[name]":           {name},
		"course_section[sis_section_id]": {FormatSISSectionID(term, crn, sectionSuffix())},
		"course_section[integration_id]": {IntegrationID(term, crn)},
	}

	var s Section
	target := c.endpoint("/courses/"+strconv.FormatInt(courseID, 10)+"/sections", nil)
	if err := c.doJSON(ctx, http.MethodPost, target, form, &s); err != nil {
		return nil, fmt.Errorf("failed to create section %s/%s in course %d: %w", term, crn, courseID, err)
	}
	slog.Info("Created LMS section",
		"institution", c.institution, "term", term, "crn", crn, "course_id", courseID, "section_id", s.ID)
	return &s, nil
}

func (c *defaultClient) DeleteSection(ctx context.Context, id int64) error {
	if err := c.doJSON(ctx, http.MethodDelete, c.endpoint("/sections/"+strconv.FormatInt(id, 10), nil), nil, nil); err != nil {
		return fmt.Errorf("failed to delete section %d: %w", id, err)
	}
	slog.Info("Deleted LMS section", "institution", c.institution, "section_id", id)
	return nil
}

// sectionSuffix keeps SIS section ids unique when a CRN is linked more than once
func sectionSuffix() string {
	return strconv.Itoa(1000 + rand.IntN(9000))
}
