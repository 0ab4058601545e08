package types

// Seed is a top-level URL supplied by the caller to start one crawl,
// optionally paired with static data merged into every record produced
// from that seed.
type Seed struct {
	// URL is the seed page URL.
	URL string

	// Static is a flat mapping merged verbatim into each record.
	Static map[string]any
}

// NewSeed creates a Seed with no static data.
func NewSeed(url string) Seed {
	return Seed{URL: url}
}

// NewSeedWithData creates a Seed carrying static data.
func NewSeedWithData(url string, static map[string]any) Seed {
	return Seed{URL: url, Static: static}
}
