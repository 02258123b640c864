// Package storage provides the backends where the projects document is kept:
// a local file, an object in an S3-compatible bucket, or memory.
//
// Every backend reads and writes the whole document at once. A document that
// does not exist yet is reported with an error matching fs.ErrNotExist.
package storage
