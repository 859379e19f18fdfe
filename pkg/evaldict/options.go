package evaldict

import "log/slog"

// options Dict 构造选项。
type options struct {
	formatter    Formatter
	logger       *slog.Logger
	invalidation Invalidation
}

// Option Dict 构造选项函数。
type Option func(*options)

// WithFormatter 设置容器级格式化器。
//
// 查找顺序：值级（[Formattable]）→ 容器级 → [DefaultFormatter]。
func WithFormatter(f Formatter) Option {
	return func(o *options) {
		o.formatter = f
	}
}

// WithLogger 设置日志记录器，默认 slog.Default()。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithInvalidation 设置缓存失效策略，默认 [InvalidateDependents]。
func WithInvalidation(policy Invalidation) Option {
	return func(o *options) {
		o.invalidation = policy
	}
}
