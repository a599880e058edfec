package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
)

// Fingerprinter derives a stable participant identity for guests who do not supply one
type Fingerprinter struct {
	salt []byte
}

// NewFingerprinter creates a Fingerprinter keyed by salt
func NewFingerprinter(salt string) *Fingerprinter {
	return &Fingerprinter{salt: []byte(salt)}
}

// Fingerprint is the HMAC-SHA256 of the client IP and user agent, hex encoded
func (f *Fingerprinter) Fingerprint(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	mac := hmac.New(sha256.New, f.salt)
	mac.Write([]byte(ip))
	mac.Write([]byte{0})
	mac.Write([]byte(r.UserAgent()))
	return hex.EncodeToString(mac.Sum(nil))
}
