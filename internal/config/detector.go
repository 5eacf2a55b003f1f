package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"GridVision/pkg/gemini"
	"GridVision/pkg/openai"
	"GridVision/pkg/oracle"
	"GridVision/pkg/spatial"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type Provider string

const (
	ProviderAuto   Provider = "auto"
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

var ErrMissingCredentials = errors.New("no vision model credentials: set OPENAI_API_KEY or GEMINI_API_KEY")

func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return ProviderAuto, nil
	case ProviderAuto, ProviderOpenAI, ProviderGemini:
		return p, nil
	default:
		return "", fmt.Errorf("unknown oracle provider %q (want openai, gemini or auto)", s)
	}
}

// LoadPolicy reads DETECT_* variables on top of spatial.DefaultPolicy.
func LoadPolicy() (spatial.Policy, error) {
	p := spatial.DefaultPolicy()

	var errs []error
	intVar := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	intVar("DETECT_MAX_ITERATIONS", &p.MaxIterations)
	intVar("DETECT_MIN_SIZE", &p.MinSize)
	intVar("DETECT_GRID_ROWS", &p.Rows)
	intVar("DETECT_GRID_COLS", &p.Cols)
	intVar("DETECT_CONCURRENCY", &p.Concurrency)
	intVar("ORACLE_MAX_IMAGE_SIDE", &p.MaxImageSide)

	if v := os.Getenv("DETECT_CONVERGENCE_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("DETECT_CONVERGENCE_THRESHOLD: %w", err))
		} else {
			p.ConvergenceThreshold = f
		}
	}

	if err := errors.Join(errs...); err != nil {
		return spatial.Policy{}, err
	}
	return p, p.Validate()
}

// DurationEnv parses key as a time.Duration, falling back to def when unset.
func DurationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// NewVisionModel resolves the provider against the available API keys. The
// returned close func releases the client.
func NewVisionModel(ctx context.Context, provider Provider) (oracle.VisionModel, func(), error) {
	if provider == ProviderAuto {
		switch {
		case os.Getenv("OPENAI_API_KEY") != "":
			provider = ProviderOpenAI
		case os.Getenv("GEMINI_API_KEY") != "":
			provider = ProviderGemini
		default:
			return nil, nil, ErrMissingCredentials
		}
	}

	switch provider {
	case ProviderOpenAI:
		model, err := openai.NewVision()
		if err != nil {
			return nil, nil, errors.Join(ErrMissingCredentials, err)
		}
		return model, func() {}, nil
	case ProviderGemini:
		client, err := gemini.NewGeminiClient(ctx)
		if errors.Is(err, gemini.ErrMissingAPIKey) {
			return nil, nil, errors.Join(ErrMissingCredentials, err)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return client, client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported oracle provider %q", provider)
	}
}

// NewOracle wraps model with the response cache and the ORACLE_RATE_LIMIT
// limiter. A nil store disables caching.
func NewOracle(model oracle.VisionModel, store oracle.Store, log *logrus.Logger) (oracle.Oracle, error) {
	o := oracle.NewModelOracle(model, log)

	if v := os.Getenv("ORACLE_RATE_LIMIT"); v != "" {
		perSecond, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("ORACLE_RATE_LIMIT: %w", err)
		}
		if perSecond > 0 {
			o = oracle.WithRateLimit(o, rate.NewLimiter(rate.Limit(perSecond), 1))
		}
	}

	ttl, err := DurationEnv("ORACLE_CACHE_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	return oracle.WithLogging(oracle.WithCache(o, store, ttl, log), log), nil
}
