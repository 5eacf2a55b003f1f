package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	contextPkg "GridVision/pkg/context"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var cacheCodec = jsoniter.ConfigCompatibleWithStandardLibrary

type rateLimited struct {
	next    Oracle
	limiter *rate.Limiter
}

// WithRateLimit blocks each query until limiter admits it. A context that ends
// while waiting is reported as ErrUnavailable.
func WithRateLimit(next Oracle, limiter *rate.Limiter) Oracle {
	if limiter == nil {
		return next
	}
	return &rateLimited{next: next, limiter: limiter}
}

func (o *rateLimited) Query(ctx context.Context, req Request) (Response, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return Response{}, errors.Join(ErrUnavailable, err)
	}
	return o.next.Query(ctx, req)
}

// Store is the key/value backend used by WithCache.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type cached struct {
	next  Oracle
	store Store
	ttl   time.Duration
	log   *logrus.Logger
}

// WithCache memoizes non-empty answers per (image, target). Store failures
// are logged and bypassed.
func WithCache(next Oracle, store Store, ttl time.Duration, log *logrus.Logger) Oracle {
	if store == nil {
		return next
	}
	return &cached{next: next, store: store, ttl: ttl, log: log}
}

func CacheKey(req Request) string {
	h := sha256.New()
	h.Write(req.Image)
	h.Write([]byte{0})
	h.Write([]byte(req.Target))
	return "oracle:" + hex.EncodeToString(h.Sum(nil))
}

func (o *cached) Query(ctx context.Context, req Request) (Response, error) {
	key := CacheKey(req)
	fields := logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"target":     req.Target,
		"key":        key,
	}

	value, found, err := o.store.Get(ctx, key)
	switch {
	case err != nil:
		o.log.WithFields(fields).WithError(err).Warn("Oracle cache read failed")
	case found:
		var resp Response
		if err := cacheCodec.Unmarshal([]byte(value), &resp); err == nil && len(resp.Cells) == len(resp.ConfidenceScores) {
			o.log.WithFields(fields).Debug("Oracle cache hit")
			return resp, nil
		}
		o.log.WithFields(fields).Warn("Discarding unreadable oracle cache entry")
		if err := o.store.Delete(ctx, key); err != nil {
			o.log.WithFields(fields).WithError(err).Warn("Oracle cache delete failed")
		}
	}

	resp, err := o.next.Query(ctx, req)
	if err != nil || resp.IsEmpty() {
		return resp, err
	}

	encoded, err := cacheCodec.Marshal(resp)
	if err != nil {
		return resp, nil
	}
	if err := o.store.Set(ctx, key, string(encoded), o.ttl); err != nil {
		o.log.WithFields(fields).WithError(err).Warn("Oracle cache write failed")
	}

	return resp, nil
}

type logged struct {
	next Oracle
	log  *logrus.Logger
}

// WithLogging records latency and the selected cells of every query.
func WithLogging(next Oracle, log *logrus.Logger) Oracle {
	return &logged{next: next, log: log}
}

func (o *logged) Query(ctx context.Context, req Request) (Response, error) {
	start := time.Now()
	resp, err := o.next.Query(ctx, req)

	entry := o.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"target":     req.Target,
		"latency_ms": time.Since(start).Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Warn("Oracle query failed")
		return resp, err
	}

	entry.WithFields(logrus.Fields{
		"cells":  resp.Cells,
		"scores": resp.ConfidenceScores,
	}).Info("Oracle query completed")
	return resp, nil
}
