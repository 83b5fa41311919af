package introspect

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/aelexs/tokenkit/internal/authn"
	"github.com/aelexs/tokenkit/internal/domain"
	"github.com/aelexs/tokenkit/internal/errmap"
)

var marshaler = &runtime.JSONPb{
	MarshalOptions: protojson.MarshalOptions{EmitUnpopulated: true},
}

// NewHTTPHandler returns a grpc-gateway runtime mux serving the
// introspection routes. Token routes sit behind the authenticator.
func (s *Service) NewHTTPHandler() (http.Handler, error) {
	mux := runtime.NewServeMux()

	routes := []struct {
		method, pattern string
		handler         http.Handler
	}{
		{http.MethodGet, "/v1/token", s.auth.HTTPMiddleware(http.HandlerFunc(s.handleToken))},
		{http.MethodGet, "/v1/token/expiry", s.auth.HTTPMiddleware(http.HandlerFunc(s.handleExpiry))},
		{http.MethodGet, "/openapi.json", http.HandlerFunc(s.handleOpenAPI)},
	}
	for _, rt := range routes {
		if err := mux.HandlePath(rt.method, rt.pattern, adapt(rt.handler)); err != nil {
			return nil, fmt.Errorf("register %s %s: %w", rt.method, rt.pattern, err)
		}
	}
	return mux, nil
}

func adapt(h http.Handler) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		h.ServeHTTP(w, r)
	}
}

func (s *Service) handleToken(w http.ResponseWriter, r *http.Request) {
	tok, ok := authn.FromContext(r.Context())
	if !ok {
		errmap.WriteHTTPError(w, domain.ErrUnauthorized)
		return
	}
	writeMessage(w, Describe(tok))
}

func (s *Service) handleExpiry(w http.ResponseWriter, r *http.Request) {
	within := s.defaultWindow
	if v := r.URL.Query().Get("within"); v != "" {
		var err error
		if within, err = parseWithin(v); err != nil {
			errmap.WriteHTTPError(w, err)
			return
		}
	}

	willExpire, err := s.WillExpire(r.Context(), authn.RawFromContext(r.Context()), within)
	if err != nil {
		errmap.WriteHTTPError(w, err)
		return
	}

	writeMessage(w, &structpb.Struct{Fields: map[string]*structpb.Value{
		"will_expire":    structpb.NewBoolValue(willExpire),
		"within_seconds": structpb.NewNumberValue(within.Seconds()),
	}})
}

// maxWithinSeconds keeps the seconds-to-Duration conversion from overflowing.
// The window bounds themselves are enforced by Service.WillExpire.
const maxWithinSeconds = math.MaxInt64 / int64(time.Second)

// parseWithin reads the within query parameter as whole seconds.
func parseWithin(v string) (time.Duration, error) {
	secs, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("within %q: %w", v, domain.ErrInvalidInput)
	}
	if secs > maxWithinSeconds || secs < -maxWithinSeconds {
		return 0, fmt.Errorf("within %d overflows: %w", secs, domain.ErrInvalidInput)
	}
	return time.Duration(secs) * time.Second, nil
}

func (s *Service) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	if len(s.openAPI) == 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(s.openAPI)
}

func writeMessage(w http.ResponseWriter, m proto.Message) {
	body, err := marshaler.Marshal(m)
	if err != nil {
		errmap.WriteHTTPError(w, err)
		return
	}
	w.Header().Set("Content-Type", marshaler.ContentType(m))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
