package testutils

import (
	"github.com/stretchr/testify/mock"
)

type MockMailSender struct {
	mock.Mock
	Configured bool
}

func (m *MockMailSender) Send(to, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}

func (m *MockMailSender) Enabled() bool {
	return m.Configured
}
