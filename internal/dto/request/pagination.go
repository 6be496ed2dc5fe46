package request

import "library-booking/pkg/utils"

type PaginatedRequest struct {
	Page    int `json:"page" validate:"min=1"`
	PerPage int `json:"per_page" validate:"min=1,max=100"`
}

// NewPaginatedRequest normalises raw query values
func NewPaginatedRequest(page, perPage int) PaginatedRequest {
	if page < 1 {
		page = 1
	}
	return PaginatedRequest{Page: page, PerPage: utils.ClampPerPage(perPage)}
}

func (p PaginatedRequest) Offset() int {
	return utils.CalculateOffset(p.Page, p.Limit())
}

func (p PaginatedRequest) Limit() int {
	return utils.ClampPerPage(p.PerPage)
}
