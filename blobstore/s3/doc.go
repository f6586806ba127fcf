// Package s3 provides an S3 implementation of the blobstore.Store interface.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	client := awss3.NewFromConfig(cfg)
//	store := s3.NewStore(client, "my-bucket", "scenes/")
//
// # Features
//
//   - Multipart uploads for large scene files
//   - CRC32C integrity validation on upload
//   - Configurable prefix for multi-tenant isolation
package s3
