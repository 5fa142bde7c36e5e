package models

// FetchStats counts catalog requests issued by a fetcher.
// Requests includes requests answered from the cache.
type FetchStats struct {
	Requests        int64 `json:"requests"`
	NetworkRequests int64 `json:"network_requests"`
}

// CacheHits returns the number of requests answered without a network call.
func (s FetchStats) CacheHits() int64 {
	return s.Requests - s.NetworkRequests
}

// CacheStats describes the contents of a catalog cache store.
type CacheStats struct {
	Backend string `json:"backend"`
	Entries int64  `json:"entries"`
}
