package protocol

import (
	verrors "github.com/vango-dev/vloop/internal/errors"
)

// ErrorMessage is the payload of an error frame. Code is a registered
// error code such as "E403".
type ErrorMessage struct {
	Code    string
	Message string
	Fatal   bool // The sender closes the connection after this frame
}

// NewErrorMessage describes err. Errors that are not coded yet are reported
// as malformed input.
func NewErrorMessage(err error, fatal bool) *ErrorMessage {
	le := verrors.FromError(err, "E401")
	return &ErrorMessage{Code: le.Code, Message: le.Error(), Fatal: fatal}
}

// EncodeErrorMessage encodes em.
func EncodeErrorMessage(em *ErrorMessage) []byte {
	e := NewEncoder()
	e.WriteString(em.Code)
	e.WriteString(em.Message)
	e.WriteBool(em.Fatal)
	return e.Bytes()
}

// DecodeErrorMessage decodes an error payload.
func DecodeErrorMessage(data []byte) (*ErrorMessage, error) {
	d := NewDecoder(data)
	code, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	message, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	fatal, err := d.ReadBool()
	if err != nil {
		return nil, err
	}
	return &ErrorMessage{Code: code, Message: message, Fatal: fatal}, nil
}

// Error implements error.
func (em *ErrorMessage) Error() string {
	if em.Fatal {
		return "fatal: " + em.Message
	}
	return em.Message
}
