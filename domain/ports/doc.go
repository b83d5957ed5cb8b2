// Package ports defines the interfaces the application services depend on.
// Infrastructure adapters implement them; tests substitute fakes.
package ports
