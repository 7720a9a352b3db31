// Package resource implements descriptor-driven CRUD handlers.
//
// # Overview
//
// Each entity type is described once by a Descriptor (collection handle,
// localizable fields, default projection and sort, optional reference join).
// The Handlers factory turns a descriptor into the five standard handlers:
// create, get-one, list, update, and delete. Mount registers them under an
// entity path with optional per-route wrappers for upload relays and filter
// middleware.
//
// # Localization
//
// The request language comes from the `lang` header: "en", "ar", or "all".
// Responses carry a localized projection: each localizable base field is
// assigned its language variant's value, with the stored variants left in
// place. Success and not-found messages go through the translator.
//
// # Response Shapes
//
// The envelope varies by operation and callers rely on field absence:
// get-one has data but no message, delete has a message but no data, and
// create and update echo data only when the descriptor's ReturnData is set.
package resource
