// Package routes cung cấp routing cho Address Resolver Service
//
// Cấu trúc:
// - api.go: API routes (/v1/*) và health routes
// - web.go: Web routes (/, /docs)
//
// Sử dụng:
// routes.SetupAllRoutes(router, addressController, adminController)
package routes
