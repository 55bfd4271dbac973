// Package identity verifies external identity tokens and drives the
// login/logout session state machine. A single external verifier is
// assumed; the token is a JWT whose audience must match the configured
// client id and whose issuer must sit on a two-entry allow-list.
package identity

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the verified identity fields extracted from the token.
type Claims struct {
	jwt.RegisteredClaims
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

// Verifier validates a raw identity token and returns its claims.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Claims, error)
}

// TokenVerifier verifies JWT identity tokens against a key source and the
// configured client id (the token's required audience).
type TokenVerifier struct {
	clientID string
	keys     jwt.Keyfunc
}

// NewTokenVerifier returns a verifier bound to a client id and key source.
func NewTokenVerifier(clientID string, keys jwt.Keyfunc) *TokenVerifier {
	return &TokenVerifier{clientID: clientID, keys: keys}
}

// Verify parses and validates the token signature, expiry, and audience.
// Issuer policy is the caller's concern: the session service checks it
// against the provider allow-list.
func (v *TokenVerifier) Verify(_ context.Context, rawToken string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, v.keys,
		jwt.WithAudience(v.clientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("verify identity token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("identity token is invalid")
	}
	return claims, nil
}

// googleCertsURL serves the provider's current JWKS signing keys.
const googleCertsURL = "https://www.googleapis.com/oauth2/v3/certs"

// jwks mirrors the JSON Web Key Set document shape.
type jwks struct {
	Keys []struct {
		Kid string `json:"kid"`
		N   string `json:"n"`
		E   string `json:"e"`
	} `json:"keys"`
}

// keyCache fetches and caches the provider's RSA public keys by key id.
// Keys rotate, so the cache refetches when a kid is unknown or stale.
type keyCache struct {
	mu        sync.Mutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

const keyCacheTTL = time.Hour

// GoogleKeyfunc returns a jwt.Keyfunc resolving RS256 key ids against the
// provider's published JWKS document.
func GoogleKeyfunc() jwt.Keyfunc {
	cache := &keyCache{}
	return func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("identity token has no key id")
		}
		return cache.lookup(kid)
	}
}

func (c *keyCache) lookup(kid string) (*rsa.PublicKey, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if key, ok := c.keys[kid]; ok && time.Since(c.fetchedAt) < keyCacheTTL {
		return key, nil
	}

	if err := c.refresh(); err != nil {
		return nil, err
	}
	key, ok := c.keys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown signing key %q", kid)
	}
	return key, nil
}

// refresh replaces the cached key set from the certs endpoint.
func (c *keyCache) refresh() error {
	resp, err := http.Get(googleCertsURL)
	if err != nil {
		return fmt.Errorf("fetch signing keys: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch signing keys: status %d", resp.StatusCode)
	}

	var doc jwks
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("decode signing keys: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		n, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			continue
		}
		e, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil {
			continue
		}
		keys[k.Kid] = &rsa.PublicKey{
			N: new(big.Int).SetBytes(n),
			E: int(new(big.Int).SetBytes(e).Int64()),
		}
	}
	if len(keys) == 0 {
		return fmt.Errorf("signing key set is empty")
	}

	c.keys = keys
	c.fetchedAt = time.Now()
	return nil
}
