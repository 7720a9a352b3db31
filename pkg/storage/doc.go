// Package storage provides the persistence layer: the PostgreSQL pool, the
// JSONB document store, the users table, and the S3 object client.
//
// # Overview
//
// Entity documents are schemaless and live in a single table keyed by
// (collection, id) with the body in a JSONB column. User accounts are typed
// and get their own table. Uploaded media goes to S3 (or any S3-compatible
// endpoint such as MinIO) through S3Client.
//
// # Schema
//
//	CREATE TABLE documents (
//		collection TEXT NOT NULL,
//		id UUID NOT NULL,
//		doc JSONB NOT NULL,
//		created_at TIMESTAMPTZ NOT NULL,
//		updated_at TIMESTAMPTZ NOT NULL,
//		PRIMARY KEY (collection, id)
//	);
//
//	CREATE TABLE users (
//		id UUID PRIMARY KEY,
//		email TEXT NOT NULL UNIQUE,
//		first_name TEXT NOT NULL DEFAULT '',
//		last_name TEXT NOT NULL DEFAULT '',
//		provider TEXT NOT NULL,
//		provider_id TEXT NOT NULL DEFAULT '',
//		photo_url TEXT NOT NULL DEFAULT '',
//		phone TEXT NOT NULL DEFAULT '',
//		region TEXT NOT NULL DEFAULT '',
//		notification_token TEXT NOT NULL DEFAULT '',
//		email_verified BOOLEAN NOT NULL DEFAULT FALSE,
//		blocked BOOLEAN NOT NULL DEFAULT FALSE,
//		created_at TIMESTAMPTZ NOT NULL,
//		updated_at TIMESTAMPTZ NOT NULL
//	);
package storage
