package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"lodging/src/config"
)

var ErrMalformedCode = errors.New("malformed check-in code")

func EncryptMessage(key []byte, message string) (string, error) {
	plaintext := []byte(message)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	cipherText := gcm.Seal(nonce, nonce, plaintext, nil)
	encodedString := hex.EncodeToString(cipherText)

	return encodedString, nil
}

func DecryptMessage(key []byte, message string) (*string, error) {
	cipherText, err := hex.DecodeString(message)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(cipherText) < gcm.NonceSize() {
		return nil, ErrMalformedCode
	}

	decryptedData, err := gcm.Open(nil, cipherText[:gcm.NonceSize()], cipherText[gcm.NonceSize():], nil)
	if err != nil {
		return nil, err
	}
	decodedString := string(decryptedData)

	return &decodedString, nil
}

type checkinPayload struct {
	ReservationID uint `json:"reservationId"`
}

// IssueCheckinCode seals the reservation id under the hex encoded AES key.
// The result is what the guest's QR code carries.
func IssueCheckinCode(hexKey string, reservationID uint) (string, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return "", fmt.Errorf("read check-in key: %w", err)
	}
	raw, _ := json.Marshal(checkinPayload{ReservationID: reservationID})
	return EncryptMessage(key, string(raw))
}

// ReadCheckinCode opens a code produced by IssueCheckinCode.
func ReadCheckinCode(hexKey, code string) (uint, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return 0, fmt.Errorf("read check-in key: %w", err)
	}
	message, err := DecryptMessage(key, strings.TrimSpace(code))
	if err != nil {
		return 0, errors.Join(ErrMalformedCode, err)
	}
	var payload checkinPayload
	if err := json.Unmarshal([]byte(*message), &payload); err != nil || payload.ReservationID == 0 {
		return 0, ErrMalformedCode
	}
	return payload.ReservationID, nil
}

// ParseDate parses a calendar date into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(config.DATE_FORMAT, strings.TrimSpace(s), time.UTC)
}

func FormatDate(t time.Time) string {
	return t.UTC().Format(config.DATE_FORMAT)
}
