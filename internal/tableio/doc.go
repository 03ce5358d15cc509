// Package tableio reads and writes Arrow records for the encryptedframe command.
//
// Inputs are CSV (optionally zstd-compressed, by a .zst suffix) or Parquet.
// Every input column is loaded as nullable utf8; empty CSV fields and Parquet
// nulls become nulls. Outputs are CSV, zstd CSV or a rendered terminal table.
package tableio
