package model

import "github.com/golang-jwt/jwt/v5"

// HostClaims carry the editing host's identity inside a signed token
type HostClaims struct {
	HostID string `json:"hostId"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse holds the bearer token used on /v1/templates, /v1/editor and the editor websocket.
// ExpiresAt is unix seconds and is omitted for tokens without expiry.
type LoginResponse struct {
	Token     string `json:"token"`
	HostID    string `json:"hostId"`
	ExpiresAt int64  `json:"expiresAt,omitempty"`
}
