// Package fetch downloads remote files into the local cache.
//
// A nil Fetcher means the tool runs offline: every operation that would need
// the network fails with NETWORK_UNAVAILABLE instead.
package fetch
