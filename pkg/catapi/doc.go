// Package catapi is a caching client for the eduroam CAT user API.
//
// Every query is answered from a Store when a fresh entry exists; otherwise
// the catalog is contacted and the raw response bytes are stored under a key
// derived from the query, the API base URL, the language and the accepted
// content type. Empty or failed responses evict the entry so that the next
// run always goes back to the network.
package catapi
