package models

// JWTClaims represents the claims extracted from a verified bearer token.
// The API does not interpret these beyond "the request is authorized"; there
// is no per-user data partitioning.
type JWTClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Exp   int64  `json:"exp"`
	Iat   int64  `json:"iat"`
	Iss   string `json:"iss"`
	Aud   string `json:"aud"`
}
