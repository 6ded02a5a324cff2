// Package sanitize validates and cleans free-text input before it is
// passed to an external script.
//
// Validate is a hard gate: it rejects empty messages and any character
// outside the allowed set (letters, digits, whitespace, '.', ',', '-',
// '_'). Clean is the same gate with a recovery path: instead of
// failing it strips the disallowed characters and reports that it did
// so, so a single stray character never aborts a whole run.
package sanitize
