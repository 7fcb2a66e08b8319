package crypto

import (
	"errors"
	"fmt"
)

// Error codes handed back to contracts in-band. They are part of the
// contract ABI and must not change.
const (
	CodeInvalidHashFormat      uint32 = 3
	CodeInvalidSignatureFormat uint32 = 4
	CodeInvalidPubkeyFormat    uint32 = 5
	CodeInvalidRecoveryParam   uint32 = 6
	CodeBatchErr               uint32 = 7
	CodeInvalidPoint           uint32 = 8
	CodeUnknownHashFunction    uint32 = 9
	CodeGenericErr             uint32 = 10
)

// Error is a guest attributable failure of a cryptographic primitive.
type Error struct {
	Code uint32
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("crypto error %d: %s", e.Code, e.Msg)
}

func newError(code uint32, format string, args ...interface{}) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

var (
	// ErrInvalidHashFormat is returned when a hash has an invalid format
	ErrInvalidHashFormat = &Error{Code: CodeInvalidHashFormat, Msg: "invalid hash format"}
	// ErrInvalidSignatureFormat is returned when a signature has an invalid format
	ErrInvalidSignatureFormat = &Error{Code: CodeInvalidSignatureFormat, Msg: "invalid signature format"}
	// ErrInvalidPubkeyFormat is returned when a public key has an invalid format
	ErrInvalidPubkeyFormat = &Error{Code: CodeInvalidPubkeyFormat, Msg: "invalid public key format"}
	// ErrInvalidRecoveryParam is returned for recovery ids other than 0 and 1
	ErrInvalidRecoveryParam = &Error{Code: CodeInvalidRecoveryParam, Msg: "invalid recovery parameter, supported values: 0 and 1"}
	// ErrUnknownHashFunction is returned for unsupported hash-to-curve hash functions
	ErrUnknownHashFunction = &Error{Code: CodeUnknownHashFunction, Msg: "unknown hash function"}
)

// CodeOf returns the ABI code of err, falling back to the generic code.
func CodeOf(err error) uint32 {
	var cryptoErr *Error
	if errors.As(err, &cryptoErr) {
		return cryptoErr.Code
	}
	return CodeGenericErr
}
