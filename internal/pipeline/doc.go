// Package pipeline drives a page through normalization, segmentation and
// recognition.
//
// # Orientations
//
// Horizontal pages are normalized and sent to the recognizer as a single
// image. Vertical pages are segmented first: text regions are detected on an
// adaptive-threshold ink mask, optionally split at blank column gaps, padded
// according to their surroundings, cropped, and recognized one by one. The
// per-region outputs are concatenated in region order; regions for which the
// recognizer returns nothing contribute nothing.
//
// # Failure
//
// A failing region aborts the whole request. The context is checked between
// regions, so a request deadline stops work at the next region boundary.
//
// # Diagnostics
//
// Intermediate images (normalized page, ink mask, region overlay, crops) are
// handed to a Sink. The default NopSink discards them; DirSink writes PNGs
// under one directory per request. Sink failures are logged and never affect
// the result.
package pipeline
