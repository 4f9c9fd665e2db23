package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the JWT claims identifying a player for the HTTP API.
type Payload struct {
	// StandardClaims embeds Exp (Expiration), Iat (Issued At), and Iss (Issuer),
	// required for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the player's user id.
	ID string `json:"id"`

	// GamingName is the player's unique display name.
	GamingName string `json:"gamingName"`
}
