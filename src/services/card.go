package services

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

type CardCheck struct {
	Last4 string
}

type CardDetails struct {
	Number         string
	CVV            string
	ExpMonth       string
	ExpYear        string
	CardholderName string
}

// CardValidator performs the format checks a payment gateway would run
// before authorizing. It never talks to the network.
type CardValidator struct {
	now func() time.Time
}

func NewCardValidator(now func() time.Time) *CardValidator {
	if now == nil {
		now = time.Now
	}
	return &CardValidator{now: now}
}

func (v *CardValidator) Validate(cardNumber, cvv, expMonth, expYear string) (CardCheck, error) {
	number := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, cardNumber)
	if !allDigits(number) || len(number) < 13 || len(number) > 19 {
		return CardCheck{}, ErrInvalidCardFormat
	}

	cvv = strings.TrimSpace(cvv)
	if !allDigits(cvv) || len(cvv) < 3 || len(cvv) > 4 {
		return CardCheck{}, ErrInvalidCvv
	}

	month, err := strconv.Atoi(strings.TrimSpace(expMonth))
	if err != nil || month < 1 || month > 12 {
		return CardCheck{}, ErrInvalidExpiry
	}
	year, ok := parseExpiryYear(expYear)
	if !ok {
		return CardCheck{}, ErrInvalidExpiry
	}

	now := v.now()
	if year < now.Year() || (year == now.Year() && month < int(now.Month())) {
		return CardCheck{}, ErrCardExpired
	}

	return CardCheck{Last4: number[len(number)-4:]}, nil
}

// parseExpiryYear accepts YYYY or YY, the latter meaning 20YY.
func parseExpiryYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if !allDigits(s) {
		return 0, false
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	switch len(s) {
	case 2:
		return 2000 + year, true
	case 4:
		return year, true
	}
	return 0, false
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
