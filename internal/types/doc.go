/*
Package types defines the data structures shared by the client, the terminal
runtime and the server.

# Overview

The types package provides shared type definitions for:
  - Chat messages exchanged through /api/messages
  - Remote file records and the fixed category set
  - Server statistics
  - Local transfer history entries

# Wire Types

Message:
  - Immutable once created by the server
  - Ordered by ID ascending, which is arrival order

FileRecord:
  - Read-only view of a stored file
  - Size is preformatted by the server ("1.5 MB")
  - Category is decided by the server from the file extension

# Response Envelopes

MessagesResponse, FilesResponse, UploadResponse, SendResponse and StatsResponse
mirror the JSON bodies returned by the server. Every envelope carries an
optional Error field because failed calls answer with {"error": "..."}.
*/
package types
