// Package sanitizer normalizes user input before validation and storage.
//
// All functions are idempotent: applying them twice yields the same result.
// Invalid input is never rejected here; it is returned in a form the
// validators will reject with a field-level message.
//
// Normalization includes:
//   - Display names: Unicode NFC, collapsed whitespace, trimmed
//   - Emails: trimmed and lower-cased, used as the client identity key
//   - Categories: lower-case ASCII slug joined by underscores - "Hot Yoga" becomes "hot_yoga"
//   - Timezones: trimmed IANA names with duplicate slashes removed
package sanitizer
