// Package mocks holds testify mocks for the service-layer interfaces.
package mocks

import "github.com/pageza/snapfeed/backend/internal/service"

var (
	_ service.IAuthService = (*MockAuthService)(nil)
	_ service.ImageStore   = (*MockImageStore)(nil)
	_ service.URLSigner    = (*MockImageStore)(nil)
)
