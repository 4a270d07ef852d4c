// Package chunk implements the cokacenc chunk wire format: the fixed 44-byte
// header, PBKDF2 key derivation, and streaming AES-256-CBC encryption with
// PKCS#7 padding. The package never touches disk; callers supply byte streams.
package chunk
