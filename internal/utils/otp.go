package utils

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

const (
	otpMin = 100000
	otpMax = 999999
)

// GenerateOTP returns a six digit numeric code drawn uniformly from [100000, 999999].
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}
