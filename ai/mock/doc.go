// Package mock provides test doubles for the ai interfaces.
// Mocks default to deterministic behavior and support behavior injection
// via function fields plus call-count assertions.
package mock
