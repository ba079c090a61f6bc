// Package bruteforce provides an exact ranker that answers top-K queries by
// scoring every record with cosine similarity.
package bruteforce
