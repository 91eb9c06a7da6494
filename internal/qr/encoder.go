package qr

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vulgatecnn/afa100-sub001/domain"
)

// Encoder produces the scannable form of a passcode: a signed compact token
// that embeds the code value and expiry, so a tampered QR image cannot mint
// a different code. Devices that scan a QR decode it back to the raw code
// before calling validate.
type Encoder struct {
	secret []byte
	issuer string
}

type codeClaims struct {
	Code       string `json:"code"`
	MerchantID string `json:"mid"`
	jwt.RegisteredClaims
}

// NewEncoder creates a new QR encoder
func NewEncoder(secret, issuer string) *Encoder {
	return &Encoder{secret: []byte(secret), issuer: issuer}
}

// Encode implements domain.QREncoder
func (e *Encoder) Encode(cred *domain.AccessCredential) (string, error) {
	claims := codeClaims{
		Code:       cred.CodeValue,
		MerchantID: cred.MerchantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    e.issuer,
			Subject:   cred.ID,
			ExpiresAt: jwt.NewNumericDate(cred.ValidUntil),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(e.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign qr token: %w", err)
	}
	return signed, nil
}

// Decode implements domain.QREncoder. Expiry is not enforced
// here: the validation engine owns the expiry decision so that a scanned
// token and a typed code take the same denial path.
func (e *Encoder) Decode(tokenString string) (string, error) {
	var claims codeClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return e.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return "", fmt.Errorf("failed to parse qr token: %w", err)
	}
	if claims.Issuer != e.issuer {
		return "", fmt.Errorf("qr token issued by %q, want %q", claims.Issuer, e.issuer)
	}
	if claims.Code == "" {
		return "", fmt.Errorf("qr token carries no code")
	}
	return claims.Code, nil
}

var _ domain.QREncoder = (*Encoder)(nil)
