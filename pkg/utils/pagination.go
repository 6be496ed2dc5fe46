package utils

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

func CalculateTotalPages(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

func CalculateOffset(page, perPage int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * ClampPerPage(perPage)
}

// ClampPerPage keeps page sizes within [1, MaxPerPage]
func ClampPerPage(perPage int) int {
	if perPage < 1 {
		return DefaultPerPage
	}
	if perPage > MaxPerPage {
		return MaxPerPage
	}
	return perPage
}
