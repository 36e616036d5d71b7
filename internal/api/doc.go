// Package api handles incoming HTTP requests, request decoding and response
// formatting. It adapts HTTP clients to the summarization service and maps
// service errors to status codes without leaking internal details.
package api
