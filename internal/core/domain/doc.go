// Package domain defines the core domain models for vitals.
//
// It holds the coded DomainError values shared by every layer and the
// Item record served by the demo data API. Domain models have no IO
// dependencies.
package domain
