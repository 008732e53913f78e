package common

// ClaimIDPrefix starts every externally visible claim identifier.
const ClaimIDPrefix = "CLM-"

// AuthorizationHeaderName carries the analyst bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header.
const BearerPrefix = "Bearer "
