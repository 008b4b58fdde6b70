// Package filedrop provides a direct-upload file service: clients receive
// short-lived presigned URLs to upload files straight to an S3-compatible
// object store, and the service records and manages the file metadata.
//
// # Key Components
//
//   - Service: Main service combining the metadata repository and URL signer
//   - FileRepo: Interface for metadata persistence (PostgreSQL, SQLite)
//   - ObjectStore: Interface for presigned URL issuance and object deletion
//   - MintKey / NormalizeKey / IsManagedKey: Object key minting and the
//     namespace guard protecting everything outside "uploads/"
//
// # Upload Flow
//
// The service never proxies file bytes. A client asks for an upload grant,
// PUTs the file directly to the object store, then registers the metadata:
//
//	grant, err := svc.Presign(ctx, filedrop.PresignRequest{
//	    FileName: "report.pdf",
//	    FileType: "application/pdf",
//	})
//	// client PUTs the file to grant.URL, then:
//	rec, err := svc.CreateRecord(ctx, filedrop.NewRecord{Key: grant.Key, ...})
//
// Deletion removes the stored object first and the metadata second, and
// refuses to touch any key outside the managed namespace.
//
// See the http package for the REST API and the database package for
// metadata backend implementations.
package filedrop
