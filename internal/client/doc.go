/*
Package client talks to the LAN transfer server over HTTP.

# Overview

The client package provides:
  - WireClient, the single transport abstraction used by every caller
  - HTTPClient, its only implementation
  - Service, typed helpers for each server endpoint

# Calls

JSON requests (client.go):
  - Body marshalled with Content-Type application/json
  - Object bodies returned as Result.Data, anything else as Result.Raw
  - Non-2xx answers converted to errors carrying a kind

Uploads (multipart.go):
  - multipart/form-data with scalar fields first, sorted by name
  - The file part is read in fixed-size blocks and progress is reported per block

Downloads (transfer.go):
  - Streamed block by block into an io.Writer
  - Progress reported per block when the length is known

# Timeouts

Every call derives its own deadline from the caller's context: the control
timeout for JSON requests, the transfer timeout for uploads and downloads.
*/
package client
