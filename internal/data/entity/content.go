package entity

type ContentKind string

const (
	ContentBanner   ContentKind = "banner"
	ContentFacility ContentKind = "facility"
	ContentNotice   ContentKind = "notice"
)

func (k ContentKind) Valid() bool {
	switch k {
	case ContentBanner, ContentFacility, ContentNotice:
		return true
	}
	return false
}

// SiteContent backs banners, facilities and notices shown on the site
type SiteContent struct {
	Base
	Kind      ContentKind `db:"kind"`
	Title     string      `db:"title"`
	Body      *string     `db:"body"`
	ImageURL  *string     `db:"image_url"`
	SortOrder int         `db:"sort_order"`
	IsActive  bool        `db:"is_active"`
}
