// Package http provides the REST API for the file service.
//
// Routes (relative to the files resource root):
//
//	POST   /presign  issue an upload grant {url, key}
//	POST   /         register a completed upload
//	GET    /         list all records, newest first, with download URLs
//	GET    /{id}     fetch one record with a download URL
//	PATCH  /{id}     merge-patch title and description
//	DELETE /{id}     delete object and record, guarded by the key namespace
//
// A delete refused by the namespace guard returns 400 with error code
// key_outside_namespace, distinct from 500 responses for unexpected
// failures.
package http
