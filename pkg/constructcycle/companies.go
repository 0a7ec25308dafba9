package constructcycle

import (
	"context"
	"fmt"
)

const (
	companyRegisterPath = "/companies/register/"
	myCompanyPath       = "/companies/my-company/"
)

// companyService implements the CompanyService interface
type companyService struct {
	client *Client
}

// Register creates the caller's company
func (s *companyService) Register(ctx context.Context, params *CompanyParams) (*Company, error) {
	if params == nil {
		params = &CompanyParams{}
	}

	var company Company
	if err := s.client.Post(ctx, companyRegisterPath, params, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

// Mine retrieves the caller's company
func (s *companyService) Mine(ctx context.Context) (*Company, error) {
	var company Company
	if err := s.client.Get(ctx, myCompanyPath, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

// UpdateMine patches the caller's company. Empty fields are not sent.
func (s *companyService) UpdateMine(ctx context.Context, params *CompanyParams) (*Company, error) {
	if params == nil {
		params = &CompanyParams{}
	}

	var company Company
	if err := s.client.Patch(ctx, myCompanyPath, params, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

// Get retrieves a company by ID
func (s *companyService) Get(ctx context.Context, companyID int64) (*Company, error) {
	var company Company
	if err := s.client.Get(ctx, fmt.Sprintf("/companies/%d/", companyID), &company); err != nil {
		return nil, err
	}
	return &company, nil
}
