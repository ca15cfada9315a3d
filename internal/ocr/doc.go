// Package ocr defines the text-recognition boundary of the service.
//
// Recognition itself is delegated to an engine; this package only fixes the
// contract the segmentation pipeline relies on and provides a Pool that shares
// a fixed number of engines between concurrent requests.
//
// # Contract
//
// A Recognizer receives one image (a whole page or a single cropped text
// region) and returns the recognized text as non-blank lines, in the order the
// engine produced them. An image without text yields an empty slice, not an
// error. The recognition language is fixed when the engine is constructed.
//
// # Engines
//
// The Tesseract engine lives in the tesseract subpackage, which needs cgo and
// the Tesseract/Leptonica libraries:
//   - Ubuntu/Debian: apt-get install libtesseract-dev tesseract-ocr-jpn tesseract-ocr-jpn-vert
//   - macOS: brew install tesseract tesseract-lang
//
// # Concurrency
//
// Engines are not safe for parallel use. Pool hands each caller exclusive use of
// one engine and blocks, honouring the caller's context, while all engines are
// busy.
package ocr
