package common

// AuthorizationHeaderName is the HTTP header and gRPC metadata key that
// carries the bearer credential. gRPC metadata keys are lower case.
const AuthorizationHeaderName = "authorization"

// BearerPrefix is the exact, case-sensitive scheme prefix expected in
// the authorization value.
const BearerPrefix = "Bearer "
