package models

import "github.com/google/uuid"

// assignID fills a missing primary key before insert. Every table uses
// char(36) UUIDs so the same schema runs on SQLite, MySQL and Postgres.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
