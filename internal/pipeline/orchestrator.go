package pipeline

import (
	"context"
	"fmt"
	"image"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/ironsheep/tategaki-ocr/internal/detection"
	apperrors "github.com/ironsheep/tategaki-ocr/internal/errors"
	"github.com/ironsheep/tategaki-ocr/internal/imaging"
	"github.com/ironsheep/tategaki-ocr/internal/log"
	"github.com/ironsheep/tategaki-ocr/internal/ocr"
)

const instrumentationName = "github.com/ironsheep/tategaki-ocr/internal/pipeline"

// Options selects pipeline behaviour.
type Options struct {
	BinarizeVertical   bool // threshold the normalized page before segmentation
	BinarizeHorizontal bool // threshold the normalized page before whole-page recognition
	SplitEnabled       bool // cut wide regions at blank column gaps
	MaxPixels          int  // reject decoded images larger than this; <= 0 disables
	Detection          detection.Config
}

// DefaultOptions returns the options the service runs with when nothing is
// configured.
func DefaultOptions() Options {
	return Options{
		BinarizeVertical: true,
		MaxPixels:        50_000_000,
		Detection:        detection.DefaultConfig(),
	}
}

// Request is one page to recognize.
type Request struct {
	ID          string
	Image       []byte
	Orientation Orientation
}

// Result is the outcome of a request.
type Result struct {
	// Text holds the recognized lines in reading order. Never nil.
	Text []string `json:"text"`
	// Regions holds the padded regions that were recognized, in the same
	// order. Empty for horizontal pages.
	Regions []detection.Region `json:"regions,omitempty"`
	// Width and Height are the dimensions of the normalized page.
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Orchestrator runs pages through the pipeline. It holds no per-request
// state and is safe for concurrent use when its Recognizer and Sink are.
type Orchestrator struct {
	recognizer ocr.Recognizer
	detector   *detection.Detector
	splitter   *detection.Splitter
	padder     *detection.PaddingEstimator
	opts       Options

	sink   Sink
	debug  bool
	logger log.Logger

	tracer        trace.TracerProvider
	meter         metric.MeterProvider
	pages         metric.Int64Counter
	regionsMetric metric.Int64Counter
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithSink sets the debug sink. nil restores NopSink.
func WithSink(s Sink) Option {
	return func(o *Orchestrator) {
		if s == nil {
			s = NopSink{}
		}
		o.sink = s
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithTracerProvider sets the provider spans are started from. The global
// provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *Orchestrator) { o.tracer = tp }
}

// WithMeterProvider sets the provider counters are created from. The global
// provider is used by default.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *Orchestrator) { o.meter = mp }
}

// New creates an Orchestrator that recognizes text with rec.
func New(rec ocr.Recognizer, opts Options, options ...Option) *Orchestrator {
	o := &Orchestrator{
		recognizer: rec,
		detector:   detection.NewDetector(opts.Detection),
		splitter:   detection.NewSplitter(opts.Detection),
		padder:     detection.NewPaddingEstimator(opts.Detection),
		opts:       opts,
		sink:       NopSink{},
		logger:     log.Default,
		tracer:     otel.GetTracerProvider(),
		meter:      otel.GetMeterProvider(),
	}
	for _, opt := range options {
		opt(o)
	}
	_, nop := o.sink.(NopSink)
	o.debug = !nop

	meter := o.meter.Meter(instrumentationName)
	var err error
	if o.pages, err = meter.Int64Counter("tategaki.pages",
		metric.WithDescription("Pages processed, by orientation.")); err != nil {
		o.pages = noop.Int64Counter{}
	}
	if o.regionsMetric, err = meter.Int64Counter("tategaki.regions",
		metric.WithDescription("Text regions recognized on vertical pages.")); err != nil {
		o.regionsMetric = noop.Int64Counter{}
	}
	return o
}

// Process decodes req.Image and runs it through the path selected by
// req.Orientation.
func (o *Orchestrator) Process(ctx context.Context, req Request) (*Result, error) {
	if req.ID != "" {
		ctx = WithRequestID(ctx, req.ID)
	}
	ctx, span := o.start(ctx, "pipeline.Process",
		attribute.String("request.id", RequestIDFromContext(ctx)),
		attribute.String("orientation", string(req.Orientation)),
		attribute.Int("image.bytes", len(req.Image)),
	)
	defer span.End()

	img, info, err := imaging.Decode(req.Image, o.opts.MaxPixels)
	if err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(
		attribute.String("image.format", info.Format),
		attribute.Int("image.width", info.Width),
		attribute.Int("image.height", info.Height),
	)

	res, err := o.ProcessImage(ctx, img, req.Orientation)
	if err != nil {
		return nil, fail(span, err)
	}
	return res, nil
}

// ProcessImage normalizes an already decoded image and recognizes it.
// Horizontal pages (and the empty orientation) are recognized in a single
// call; vertical pages go through ProcessVertical.
func (o *Orchestrator) ProcessImage(ctx context.Context, img image.Image, orientation Orientation) (*Result, error) {
	switch orientation {
	case "", Horizontal:
		o.pages.Add(ctx, 1, metric.WithAttributes(attribute.String("orientation", string(Horizontal))))
		gray := imaging.Normalize(img, o.opts.BinarizeHorizontal)
		o.snapshot(ctx, "normalized", gray)

		lines, err := o.recognizer.Recognize(ctx, gray)
		if err != nil {
			return nil, err
		}
		b := gray.Bounds()
		return &Result{Text: append(make([]string, 0, len(lines)), lines...), Width: b.Dx(), Height: b.Dy()}, nil

	case Vertical:
		o.pages.Add(ctx, 1, metric.WithAttributes(attribute.String("orientation", string(Vertical))))
		gray := imaging.Normalize(img, o.opts.BinarizeVertical)
		o.snapshot(ctx, "normalized", gray)
		return o.segment(ctx, gray)
	}
	return nil, apperrors.NewInvalidRequestError(fmt.Sprintf("unsupported orientation %q", orientation))
}

// ProcessVertical segments a normalized page into text regions and
// recognizes each region separately. The result is the concatenation of the
// per-region outputs in region order.
func (o *Orchestrator) ProcessVertical(ctx context.Context, gray *image.Gray) ([]string, error) {
	res, err := o.segment(ctx, gray)
	if err != nil {
		return nil, err
	}
	return res.Text, nil
}

func (o *Orchestrator) segment(ctx context.Context, gray *image.Gray) (*Result, error) {
	ctx, span := o.start(ctx, "pipeline.Segment")
	defer span.End()
	id := RequestIDFromContext(ctx)

	mask := o.detector.Mask(gray)
	o.snapshot(ctx, "mask", mask)

	regions := o.detector.Regions(mask)
	// A connected component has ink in every column of its box, so this
	// pass leaves detector output unchanged.
	if o.opts.SplitEnabled {
		regions = o.split(mask, regions)
	}

	padded := make([]detection.Region, len(regions))
	for i, r := range regions {
		padded[i] = o.padder.Pad(gray, r)
	}
	span.SetAttributes(attribute.Int("regions", len(padded)))
	o.logger.Debugf("[%s] %d text regions on %dx%d page", id, len(padded), gray.Bounds().Dx(), gray.Bounds().Dy())
	if o.debug {
		o.snapshot(ctx, "regions", imaging.RegionOverlay(gray, detection.Rects(padded)))
	}

	b := gray.Bounds()
	res := &Result{
		Text:    make([]string, 0, len(padded)),
		Regions: padded,
		Width:   b.Dx(),
		Height:  b.Dy(),
	}
	for i, r := range padded {
		if err := ctx.Err(); err != nil {
			return nil, fail(span, err)
		}
		lines, err := o.recognizeRegion(ctx, gray, i, r)
		if err != nil {
			return nil, fail(span, fmt.Errorf("region %d at (%d,%d %dx%d): %w", i, r.X, r.Y, r.Width, r.Height, err))
		}
		res.Text = append(res.Text, lines...)
	}
	o.regionsMetric.Add(ctx, int64(len(padded)))
	return res, nil
}

func (o *Orchestrator) recognizeRegion(ctx context.Context, gray *image.Gray, i int, r detection.Region) ([]string, error) {
	ctx, span := o.start(ctx, "pipeline.Region",
		attribute.Int("region.index", i),
		attribute.Int("region.x", r.X),
		attribute.Int("region.y", r.Y),
		attribute.Int("region.width", r.Width),
		attribute.Int("region.height", r.Height),
	)
	defer span.End()

	crop, err := imaging.Crop(gray, r.Rect())
	if err != nil {
		return nil, fail(span, err)
	}
	o.snapshot(ctx, fmt.Sprintf("region-%03d", i), crop)

	lines, err := o.recognizer.Recognize(ctx, crop)
	if err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.Int("lines", len(lines)))
	return lines, nil
}

// split replaces every region wide enough to be considered with its
// sub-regions.
func (o *Orchestrator) split(mask *image.Gray, regions []detection.Region) []detection.Region {
	out := make([]detection.Region, 0, len(regions))
	for _, r := range regions {
		if !o.splitter.ShouldSplit(r) {
			out = append(out, r)
			continue
		}
		out = append(out, o.splitter.Split(mask, r)...)
	}
	return out
}

func (o *Orchestrator) snapshot(ctx context.Context, name string, img image.Image) {
	if !o.debug {
		return
	}
	id := RequestIDFromContext(ctx)
	if err := o.sink.Snapshot(ctx, id, name, img); err != nil {
		o.logger.Warnf("[%s] debug snapshot %s failed: %v", id, name, err)
	}
}

func (o *Orchestrator) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return o.tracer.Tracer(instrumentationName).Start(ctx, name, trace.WithAttributes(attrs...))
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
