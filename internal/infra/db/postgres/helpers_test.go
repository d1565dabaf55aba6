//go:build integration

package postgres

import "wellness-companion/internal/infra/security"

func newTestEncryptionService() (*security.EncryptionService, error) {
	return security.NewEncryptionService("0123456789abcdef0123456789abcdef")
}
