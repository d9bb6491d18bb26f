package bvhgo

import (
	"github.com/hupe1980/bvhgo/codec"
	"github.com/hupe1980/bvhgo/hierarchy/bvh"
	"github.com/hupe1980/bvhgo/persistence"
	"github.com/hupe1980/bvhgo/resource"
)

type options struct {
	buildOptions     []func(*bvh.Options)
	codec            codec.Codec
	compression      persistence.Compression
	metricsCollector MetricsCollector
	logger           *Logger
	resourceConfig   resource.Config
	maxConcurrency   int
}

func defaultOptions() options {
	return options{
		codec:            codec.Default,
		compression:      persistence.CompressionNone,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
}

// Option configures Tree construction and snapshot behavior.
type Option func(*options)

// WithLeafSize sets the maximum number of shapes stored per leaf.
// Smaller leaves traverse faster at the cost of a deeper tree.
func WithLeafSize(n int) Option {
	return func(o *options) {
		o.buildOptions = append(o.buildOptions, func(b *bvh.Options) {
			b.LeafSize = n
		})
	}
}

// WithBucketCount sets the number of SAH bins evaluated per split.
func WithBucketCount(n int) Option {
	return func(o *options) {
		o.buildOptions = append(o.buildOptions, func(b *bvh.Options) {
			b.BucketCount = n
		})
	}
}

// WithMaxDepth caps recursion depth during construction. Subtrees at the
// cap become leaves regardless of size.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		o.buildOptions = append(o.buildOptions, func(b *bvh.Options) {
			b.MaxDepth = n
		})
	}
}

// WithCodec configures the codec used for encoding snapshot manifests.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression configures compression for snapshot node sections.
//
// Compressed snapshots cannot be memory mapped with OpenSnapshot.
func WithCompression(c persistence.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &bvhgo.BasicMetricsCollector{}
//	tree, _ := bvhgo.New(shapes, bvhgo.WithMetricsCollector(metrics))
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging. Pass nil to disable logging.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithResourceConfig configures global resource limits: snapshot IO
// throughput, background worker slots, and tracked memory.
func WithResourceConfig(cfg resource.Config) Option {
	return func(o *options) {
		o.resourceConfig = cfg
	}
}

// WithMaxConcurrency bounds the number of goroutines used by
// TraverseBatch. Zero means one goroutine per available CPU.
func WithMaxConcurrency(n int) Option {
	return func(o *options) {
		o.maxConcurrency = n
	}
}
