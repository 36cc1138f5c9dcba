// Package blogicum is a multi-author blogging site served as HTML pages.
//
// Binaries live under cmd/:
//
//   - cmd/server: the web server
//   - cmd/migrate: creates and updates the database schema
//   - cmd/seed: fills a development database with fake data
//   - cmd/admin: moderation and taxonomy from the command line
//
// The code is organized into subpackages:
//
//   - internal/handlers: page handlers, forms, templates and routes
//   - internal/visibility: the rule deciding which posts the public sees
//   - internal/repository: database access for posts, comments, users and taxonomy
//   - internal/models: database schemas
//   - internal/auth: passwords, sessions and password resets
//   - internal/middleware: sessions, CSRF, rate limiting, logging, metrics and tracing
//   - internal/storage: post images on disk or S3
//   - internal/email: password reset mail through SES or the log
//   - internal/database: connection and migrations
//   - internal/seed: fake data for development
package blogicum
