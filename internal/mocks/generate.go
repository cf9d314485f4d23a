// Package mocks provides generated mock implementations for the session
// core ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe
// mocks. To regenerate after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	store := mocks.NewMockSessionStore(ctrl)
//	store.EXPECT().Clear(gomock.Any()).Return(nil)
package mocks

// Generate mock for SessionStore interface from internal/ports.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_store_mock.go github.com/college-predictor/prompt-manager-fe/internal/ports SessionStore
