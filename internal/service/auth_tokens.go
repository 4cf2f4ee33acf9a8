package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpiry reads the exp claim of the upstream token. The signature is not
// checked: the upstream API remains the authority on the token, this only
// bounds how long the BFA keeps the session. Opaque or expiry-less tokens get
// the fallback TTL.
func tokenExpiry(token string, now time.Time, fallback time.Duration) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return now.Add(fallback)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil || !exp.After(now) {
		return now.Add(fallback)
	}
	return exp.Time
}
