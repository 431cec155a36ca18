// Package rut validates Chilean RUT identifiers (body plus modulo-11 check digit).
package rut

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalid = errors.New("invalid RUT")

// Clean removes dots and hyphens and upper-cases the check digit.
func Clean(raw string) string {
	s := strings.ReplaceAll(raw, ".", "")
	s = strings.ReplaceAll(s, "-", "")
	return strings.ToUpper(strings.TrimSpace(s))
}

// ComputeCheckDigit returns the check digit for a numeric body, or "" when the
// body is empty or not all digits.
func ComputeCheckDigit(body string) string {
	if body == "" {
		return ""
	}

	sum := 0
	multiplier := 2
	for i := len(body) - 1; i >= 0; i-- {
		c := body[i]
		if c < '0' || c > '9' {
			return ""
		}
		sum += int(c-'0') * multiplier
		if multiplier == 7 {
			multiplier = 2
		} else {
			multiplier++
		}
	}

	switch dv := 11 - sum%11; dv {
	case 11:
		return "0"
	case 10:
		return "K"
	default:
		return strconv.Itoa(dv)
	}
}

func split(raw string) (body, dv string, ok bool) {
	clean := Clean(raw)
	if len(clean) < 2 {
		return "", "", false
	}
	return clean[:len(clean)-1], clean[len(clean)-1:], true
}

// Validate reports whether the embedded check digit matches the body.
func Validate(raw string) bool {
	body, dv, ok := split(raw)
	if !ok {
		return false
	}
	expected := ComputeCheckDigit(body)
	return expected != "" && expected == dv
}

// Normalize returns "BODY-DV" without dots. Invalid input yields ErrInvalid.
func Normalize(raw string) (string, error) {
	if !Validate(raw) {
		return "", ErrInvalid
	}
	body, dv, _ := split(raw)
	return body + "-" + dv, nil
}
