// Package service provides domain services for vitals.
//
// ItemService holds the business rules of the demo data API and depends
// on an ItemRepository for storage, so handlers never touch the store
// directly.
package service
