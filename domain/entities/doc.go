// Package entities provides the core domain types for plugin manifest and API spec checks.
// These are plain data types shared by the application services and infrastructure adapters.
package entities
