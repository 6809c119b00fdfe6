package webhooks

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/malpra/marketplace-backend/api/responses"
	"github.com/malpra/marketplace-backend/internal/payments/helapay"
	pkgerrors "github.com/malpra/marketplace-backend/pkg/errors"
	"github.com/malpra/marketplace-backend/pkg/logger"
)

// HelaPayNotify handles the gateway's server-to-server payment notification.
// The gateway posts form-encoded or JSON fields and retries until it sees a
// 2xx, so a replayed notification for an already-settled order is acknowledged
// without touching state.
func HelaPayNotify(svc helapay.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		params, err := notifyParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid notification payload"))
			return
		}

		result, err := svc.HandleNotify(ctx, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(ctx, fmt.Sprintf("helapay notification for order %s processed (status=%s replayed=%v)", result.OrderID, result.Status, result.Replayed))
		}
		responses.WriteSuccess(w, result)
	}
}

func notifyParams(r *http.Request) (url.Values, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		return jsonParams(r.Body)
	}
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return r.Form, nil
}

// jsonParams flattens a one-level JSON object into url.Values. UseNumber keeps
// numeric status codes in their literal form.
func jsonParams(body io.Reader) (url.Values, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	payload := map[string]any{}
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}

	params := url.Values{}
	for key, value := range payload {
		switch v := value.(type) {
		case nil:
		case string:
			params.Set(key, v)
		default:
			params.Set(key, fmt.Sprint(v))
		}
	}
	return params, nil
}
