// Package services implements the business logic layer of the Data Analysis
// Studio. It provides a clean separation between HTTP handlers and the
// pipeline components, ensuring that business rules are centralized and
// testable.
//
// # Architecture
//
// Services follow these architectural principles:
//
//	1. Interface-driven design for testability
//	2. Context propagation for cancellation and tracing
//	3. Dependency injection for loose coupling
//	4. Domain-focused methods that encapsulate business rules
//
// # Available Services
//
// The package provides these core services:
//
//	- AnalysisService: Runs the ingest → clean → summarize → report
//	  pipeline on uploaded files and keeps completed analyses in an
//	  in-memory session store
//	- HealthService: Provides system health checks
//
// # Session Model
//
// Analyses are single-user interactive sessions. The SessionStore bounds
// them by capacity and TTL, evicting lazily during Put and Get so no
// background goroutine runs. Nothing is persisted; an evicted session is
// simply gone and the client must re-upload.
//
// # Error Handling
//
// Services return domain-specific errors that handlers can transform:
//
//	- UnsupportedFormatError for unrecognized file extensions
//	- EmptyResultError when ingestion produces zero rows
//	- CloudExportError for failed S3 uploads
//	- ErrAnalysisNotFound for missing or expired sessions
package services
