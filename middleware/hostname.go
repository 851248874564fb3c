package middleware

import (
	"fmt"
	"net/http"
	"os"

	"github.com/vitalvas/signgate/logging"
	"go.uber.org/zap"
)

// HostnameHeader names the instance that answered.
const HostnameHeader = "X-Server-Hostname"

// HostnameConfig configures Hostname.
type HostnameConfig struct {
	// Name is used as is when set.
	Name string

	// Env lists environment variables tried in order before os.Hostname,
	// for example POD_NAME under Kubernetes.
	Env []string
}

// Hostname sets X-Server-Hostname on every response and adds a hostname
// field to the request-scoped logger when one is in the context. The name is
// resolved once.
func Hostname(cfg HostnameConfig) (Func, error) {
	name, err := resolveHostname(cfg)
	if err != nil {
		return nil, err
	}

	field := zap.String("hostname", name)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(HostnameHeader, name)

			if logger := logging.FromContext(r.Context(), nil); logger != nil {
				r = r.WithContext(logging.NewContext(r.Context(), logger.With(field)))
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

func resolveHostname(cfg HostnameConfig) (string, error) {
	if cfg.Name != "" {
		return cfg.Name, nil
	}

	for _, key := range cfg.Env {
		if v := os.Getenv(key); v != "" {
			return v, nil
		}
	}

	name, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("middleware: resolve hostname: %w", err)
	}

	return name, nil
}
