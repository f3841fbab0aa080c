package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrEmptyURL is returned when a lookup request carries no URL
	ErrEmptyURL = errors.New("URL field is empty")

	// ErrUnsupportedURL is returned when the source URL is not a supported marketplace page
	ErrUnsupportedURL = errors.New("URL is not valid")

	// ErrMissingSession is returned when no progress session key accompanies a request
	ErrMissingSession = errors.New("session key is missing")

	// ErrProductInfoNotFound is returned when the source page yields no product data
	ErrProductInfoNotFound = errors.New("couldn't find product info")

	// ErrNoCheaperProduct is returned when the comparison finished without a cheaper offer
	ErrNoCheaperProduct = errors.New("could not find a cheaper product")

	// ErrFetchFailed is returned when a page could not be retrieved
	ErrFetchFailed = errors.New("page fetch failed")

	// ErrLikelyBlocked is returned when the marketplace answers with a status that usually means a captcha
	ErrLikelyBlocked = errors.New("request likely blocked by marketplace")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")
)
