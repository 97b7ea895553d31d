// Package redis connects to a Redis server with env-driven configuration
// and retry, and offers a small byte-oriented Cache wrapper plus a health
// probe. The client is a natural container singleton shared by every
// request.
package redis
