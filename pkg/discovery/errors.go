package discovery

import "fmt"

// IllegalRedirectError reports a redirect profile whose target is not a URL.
type IllegalRedirectError struct {
	Profile int
	URL     string
	Err     error
}

func (e *IllegalRedirectError) Error() string {
	return fmt.Sprintf("illegal redirect URL %s for profile %d: %v", e.URL, e.Profile, e.Err)
}

func (e *IllegalRedirectError) Unwrap() error {
	return e.Err
}
