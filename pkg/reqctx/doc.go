// Package reqctx carries request-scoped metadata through context.
//
// HTTP middleware sets RequestMeta for every request:
//
//	ctx = reqctx.WithRequestMeta(ctx, &reqctx.RequestMeta{
//	    RequestID:   "0199f0c2-...",
//	    ClientIP:    "10.0.0.7",
//	    Source:      "gateway",
//	    RequestedAt: time.Now(),
//	})
//
// Services annotate their loggers from it:
//
//	log := reqctx.Logger(ctx, s.log)
//	log.Info("visit registered", "sender", sender)
//
// Trace IDs come from the OpenTelemetry span in the context.
package reqctx
