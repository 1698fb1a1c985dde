// Package feed is the HTTP client for the feed service.
//
// # Overview
//
// Four request/response operations are exposed on *Client:
//
//   - CreateRecord            POST /api/items/                      → 201 {"id"}
//   - RequestUploadCredential POST /api/media_files/presigned_urls/ → 201 {"presigned_url","media_url"}
//   - FetchRecord             GET  /api/items/{id}/                 → 200 record
//   - FinalizeRecord          PUT  /api/items/{id}/                 → 200
//
// Every request carries the API key in the X-MicrofeedAPI-Key header and is
// bounded by a per-operation timeout.
//
// # Error Handling
//
// Transport failures, unexpected statuses and malformed bodies all come back
// as *Error. Callers that care can match ErrNotFound, ErrUnexpectedStatus
// and ErrMissingField with errors.Is; the pipeline treats them alike.
package feed
