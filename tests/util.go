package testutil

import (
	"net/mail"

	"github.com/trezcool/darasa/core"
)

// NopLogger discards everything; tests that only need a core.Logger use it.
type NopLogger struct{}

var _ core.Logger = (*NopLogger)(nil)

func (NopLogger) Debug(msg string, args ...interface{}) {}
func (NopLogger) Info(msg string, args ...interface{})  {}
func (NopLogger) Warn(msg string, args ...interface{})  {}
func (NopLogger) Error(msg string, args ...interface{}) {}
func (NopLogger) Fatal(msg string, args ...interface{}) {}

// NewConfig returns a self-contained test configuration that does not read
// the environment or any .env file.
func NewConfig() *core.Config {
	return &core.Config{
		Env:              "TEST",
		Debug:            true,
		TestMode:         true,
		AppName:          "Darasa",
		SecretKey:        []byte("s3cr3t"),
		FrontendBaseURL:  "https://darasa.test",
		DefaultFromEmail: mail.Address{Name: "Darasa", Address: "noreply@darasa.test"},
	}
}
