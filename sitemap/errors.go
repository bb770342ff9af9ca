package sitemap

import "errors"

var (
	// ErrInvalidHostname indicates the sitemap hostname is not an absolute http(s) URL.
	ErrInvalidHostname = errors.New("invalid sitemap hostname")
	// ErrTooManyURLs is returned when a single sitemap would exceed the protocol limit.
	ErrTooManyURLs = errors.New("sitemap exceeds url limit")
	// ErrSitemapTooLarge is returned when the encoded sitemap exceeds the size limit.
	ErrSitemapTooLarge = errors.New("sitemap exceeds size limit")
)
