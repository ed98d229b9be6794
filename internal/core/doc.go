// Package core provides the business logic for credential import and export.
//
// This package is the heart of credport, containing all domain logic
// independent of any UI or transport layer. It can be used by web handlers,
// CLI tools, or tests without modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Canonical records: [ExternalResource], [ExternalFolder] and [TOTP] are the
//     format-agnostic shapes every vendor format translates to and from.
//   - Format definitions: registered via the registry, each vendor format has a
//     column mapping, an optional TOTP adapter and optional hooks.
//   - Resource types: an injected, ordered catalog of secret schemas that rows
//     are classified into by [Classify].
//   - Sessions: [ImportSession] and [ExportSession] drive one operation each.
//
// # Format Registry
//
// Formats are registered at init time using [Register]. Registration order is
// significant: when two formats score the same on a header, the one registered
// first wins.
//
//	core.Register(core.FormatDefinition{
//	    Info: core.FormatInfo{Key: "chromium", Label: "Chromium"},
//	    Columns: []core.ColumnSpec{
//	        {Field: core.FieldName, Column: "name"},
//	        {Field: core.FieldSecretClear, Column: "password"},
//	    },
//	})
//
// # Import Flow
//
//  1. Caller builds an [ImportSession] with a reference label and a catalog
//  2. The payload is decoded (base64, BOM, charset) and read as CSV
//  3. The header row selects a format through [Registry.Detect]
//  4. Rows are parsed, classified, placed in the folder tree and validated
//  5. Failures are collected per row; only file-level problems abort
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - IMP001-IMP005: Import errors (format detection, resource types)
//   - VAL001-VAL004: Record validation errors
//   - TOTP001: One-time password errors
//   - FILE001-FILE004: Payload errors
package core
