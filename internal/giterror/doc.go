// Package giterror provides error inspection capabilities for GitHub API errors.
// It centralizes the logic for identifying different types of errors returned by
// the GitHub REST API, so the transport and the ingest pipeline agree on what is
// retryable, what is fatal for one pull request, and what only trims a page.
package giterror
