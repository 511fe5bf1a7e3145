package domain

import "strings"

const maskedPrefix = "**** **** **** "

// MaskCardNumber hides all but the last four digits of a plaintext card number.
// Numbers shorter than 16 characters are masked completely.
func MaskCardNumber(number string) string {
	number = strings.ReplaceAll(number, " ", "")
	if len(number) < 16 {
		return maskedPrefix + "****"
	}
	return maskedPrefix + number[len(number)-4:]
}

// IsValidCardNumber reports whether number consists of 16 to 19 digits.
func IsValidCardNumber(number string) bool {
	if len(number) < 16 || len(number) > 19 {
		return false
	}
	for _, r := range number {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
