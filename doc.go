// Package pix implements PIX, a lossless still-image container with a
// self-selecting compressor.
//
// A PIX file is a 7 byte header followed by a method specific payload:
//
//	offset 0  "PX"
//	offset 2  width  (uint16, little endian)
//	offset 4  height (uint16, little endian)
//	offset 6  flags  (bits 0-3 method id, bit 4 alpha present)
//	offset 7  payload
//
// Encode runs every eligible method (raw, run-length, deflate, predictors,
// palette, PNG style row filters and their chained variants) over the same
// pixels in parallel and keeps the smallest result. Decode reverses whichever
// method was stored.
package pix
