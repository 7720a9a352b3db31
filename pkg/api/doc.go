// Package api assembles the HTTP server.
//
// # Overview
//
// The server mounts the identity endpoints, the descriptor-driven entity
// routes (categories with image uploads, lessons with audio and a category
// join, the banner), and the operational /healthz and /metrics endpoints.
// Recovery, request logging, and metrics run as router-wide middleware.
//
// # Routes
//
//	POST   /admin/auth/apple
//	POST   /admin/auth/apple/callback
//	POST   /admin/auth/google
//	POST   /admin/{entity}            create (upload relay on media entities)
//	GET    /admin/{entity}            list: page, limit, sort, fields, keyword
//	GET    /admin/{entity}/{id}
//	PUT    /admin/{entity}/{id}       also PATCH
//	DELETE /admin/{entity}/{id}
//	GET    /healthz
//	GET    /metrics
package api
