// Package logger builds *slog.Logger instances for the service.
//
// New takes functional options: output format, level, static attributes and
// ContextExtractor callbacks that inject request-scoped values (such as the
// request id) into every record logged with a context.
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.AppEnv, "gems-simce-api"),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "gem generated", logger.GemID(id), logger.Email(email))
//
// Attribute helpers in attr.go keep key names consistent. Error returns an
// empty attribute for nil errors, so it can be passed unconditionally.
package logger
