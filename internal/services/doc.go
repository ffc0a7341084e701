// Package services talks to the article processing backend.
//
// # Transports
//
// [Backend] has two implementations:
//   - [HTTPBackend] maps each call onto the REST contract through [APIService]
//   - [MockBackend] answers from fixtures, optionally after a delay, and simulates social post jobs
//
// [APIService] owns the HTTP concerns: base URL joining, JSON and multipart bodies and the
// per-request timeout. Requests marked [Request].Long get the image timeout set through
// [APIService.WithTimeouts]. [NewAuthorizedClient] adds an optional bearer token.
//
// # Errors
//
// Every failure is an [*APIError] classified by [ErrorKind]:
//   - [KindClient] : the request could not be built
//   - [KindNetwork] : no response was received
//   - [KindServer] : non-2xx response, Message holds the backend's "error" or "detail"
//   - [KindTimeout] : the per-request deadline passed
//   - [KindCanceled] : the caller's context was canceled
//
// [Describe] renders any error as a one-line message for the UI.
//
// # URLs
//
// The backend returns paths relative to its static root. [StaticImageURL] and [ResolveImageURL]
// turn them into absolute URLs against [StaticBaseURL].
package services
