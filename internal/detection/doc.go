// Package detection segments a page of vertical Japanese text into regions
// that a line-oriented recognition engine can read one at a time.
//
// The package implements the geometric half of the vertical pipeline: it
// finds candidate text regions, optionally splits regions that swallowed
// several neighbouring columns, and decides how much surrounding context each
// region needs before it is cropped.
//
// # Pipeline
//
// The components are meant to be run in this order on a normalized
// (*image.Gray) page:
//
//  1. Detector.Mask: adaptive mean thresholding. A pixel is ink when it is at
//     least Bias darker than the mean of its BlockSize×BlockSize window, which
//     tolerates lighting gradients across a scanned page.
//  2. Detector.Regions: 8-connected components of the ink mask, reduced to
//     their bounding boxes. Components inside a hole of another component are
//     dropped, so only outermost boundaries survive. Boxes no wider than
//     MinRegionWidth or no taller than MinRegionHeight are treated as noise.
//  3. Splitter.Split: a vertical projection profile over the ink mask, cut at
//     every blank gap between ink runs.
//  4. PaddingEstimator.Pad: the larger of a size-proportional margin and a
//     margin driven by how dark the strips just outside the region are,
//     clamped to the page.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - A Region covers columns [X, X+Width) and rows [Y, Y+Height)
//
// Inputs are expected to have bounds starting at (0,0); imaging.Normalize
// guarantees this.
//
// # Reading Order
//
// Regions are returned sorted by top coordinate. That is the order the
// segmentation has always produced, but it interleaves characters from
// different columns on a multi-column vertical page. ReadingOrderColumnsRTL
// groups regions into columns first and orders columns right to left; it is
// opt-in until it has been validated against real scans.
//
// # Thread Safety
//
// Detector, Splitter and PaddingEstimator hold only their Config and can be
// shared between goroutines. None of them modify their input images.
package detection
