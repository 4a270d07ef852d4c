// Package metadata defines the provenance record embedded at the start of
// every chunk's plaintext and the streaming framer that splits a decrypted
// chunk back into its record and file-data bytes.
package metadata
