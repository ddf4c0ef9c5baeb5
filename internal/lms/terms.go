package lms

import (
	"context"
	"fmt"
	"net/http"
)

type enrollmentTermsResponse struct {
	EnrollmentTerms []EnrollmentTerm `json:"enrollment_terms"`
}

func (c *defaultClient) GetEnrollmentTerms(ctx context.Context) ([]EnrollmentTerm, error) {
	var resp enrollmentTermsResponse
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("/accounts/"+c.accountID+"/terms", nil), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list enrollment terms: %w", err)
	}
	return resp.EnrollmentTerms, nil
}

func (c *defaultClient) GetEnrollmentTermBySISID(ctx context.Context, sisTermID string) (*EnrollmentTerm, error) {
	terms, err := c.GetEnrollmentTerms(ctx)
	if err != nil {
		return nil, err
	}
	for i := range terms {
		if terms[i].SISTermID == sisTermID {
			return &terms[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrEnrollmentTermNotFound, sisTermID)
}
