package campusfeed

import (
	"fmt"
	"net/url"
	"strings"
)

const defaultStoreDomain = "s3.amazonaws.com"

// URLResolver maps storage keys to deterministic public URLs and back.
// When a CDN base is configured, generated URLs are CDN-aliased; key
// derivation tolerates CDN-aliased, virtual-hosted and path-style URL
// shapes so a record written under one configuration can still be
// cleaned up under another.
type URLResolver struct {
	bucket      string
	region      string
	storeDomain string
	cdnBaseURL  string
}

// ResolverOption configures a URLResolver.
type ResolverOption func(*URLResolver)

// WithCDNBaseURL makes generated URLs point at the CDN alias.
func WithCDNBaseURL(base string) ResolverOption {
	return func(r *URLResolver) { r.cdnBaseURL = strings.TrimSuffix(base, "/") }
}

// WithStoreDomain overrides the object-store domain suffix.
func WithStoreDomain(domain string) ResolverOption {
	return func(r *URLResolver) { r.storeDomain = domain }
}

// NewURLResolver creates a resolver for one bucket/region pair.
func NewURLResolver(bucket, region string, opts ...ResolverOption) *URLResolver {
	r := &URLResolver{
		bucket:      bucket,
		region:      region,
		storeDomain: defaultStoreDomain,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PublicURL returns the deterministic public URL for a storage key.
func (r *URLResolver) PublicURL(key string) string {
	key = strings.TrimPrefix(key, "/")
	if r.cdnBaseURL != "" {
		return r.cdnBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.%s.%s/%s", r.bucket, r.region, r.storeDomain, key)
}

// Key derives the storage key back from a public URL.
func (r *URLResolver) Key(rawURL string) (string, error) {
	if rawURL == "" {
		return "", &ValidationError{Field: "url", Reason: "required"}
	}

	if r.cdnBaseURL != "" && strings.HasPrefix(rawURL, r.cdnBaseURL+"/") {
		return strings.TrimPrefix(rawURL, r.cdnBaseURL+"/"), nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", &ValidationError{Field: "url", Reason: fmt.Sprintf("not a valid url: %v", err)}
	}

	key := strings.TrimPrefix(u.Path, "/")
	// Path-style bucket URLs carry the bucket as the first path segment.
	if r.bucket != "" && !strings.HasPrefix(u.Host, r.bucket+".") {
		key = strings.TrimPrefix(key, r.bucket+"/")
	}
	if key == "" {
		return "", &ValidationError{Field: "url", Reason: "no object key in url"}
	}
	return key, nil
}
