package common

// AuthorizationHeaderName carries the bearer token on protected routes.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only accepted Authorization scheme.
const BearerScheme = "Bearer"

// AccessTokenScope is the scope claim stamped on every access token.
const AccessTokenScope = "access_token"
