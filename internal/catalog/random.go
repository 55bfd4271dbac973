package catalog

import "crypto/rand"

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 5
)

// randomCode mints the short disambiguator attached to a freshly uploaded
// image. It only busts client-side caching of the stable asset filename,
// so collisions are harmless; it is never part of identity.
func randomCode() string {
	b := make([]byte, codeLength)
	rand.Read(b)
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b)
}
