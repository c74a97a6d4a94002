// Package core provides the business card exchange use cases.
//
// This package holds all domain logic independent of any transport. It can be
// used by web handlers, CLI tools, or tests without modification; storage and
// caching are reached through the [Repository] and [Cache] interfaces.
//
// # Import
//
// [Service.Import] accepts a CSV or XML file and persists every record it can:
//
//  1. The file is checked for emptiness and size, and its extension picks the codec
//  2. The codec parses the whole file; a format error aborts the import
//  3. Each record is validated and stored by a bounded worker group
//  4. Outcomes are folded, in input order, into successes and failures
//
// A mixed outcome is still a successful call: failed records come back with
// their input fields and the reason they were rejected.
//
// # Export
//
// [Service.Export] serializes stored cards as CSV or UTF-16 XML, returning the
// bytes with a media type and a timestamped file name.
//
// # QR codes
//
// [Service.GenerateQR] renders a validated card as a PNG QR code and
// [Service.DecodeQR] reads a card back from an uploaded image.
//
// # Error Handling
//
// Domain failures are *card.Error values from the card catalog. [MapError]
// turns any error into a [UserMessage] with a support code, falling back to
// pattern matching for infrastructure errors.
package core
