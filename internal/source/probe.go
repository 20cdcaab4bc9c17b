package source

import (
	"context"
	"encoding/json"
	"net/http"
)

// ServiceEnvironment is the diagnostic document a backend serves next to its data.
type ServiceEnvironment struct {
	Environment   string  `json:"environment"`
	SampleSetting *string `json:"sampleSetting"`
}

// ProbeEnvironment GETs url and decodes a ServiceEnvironment.
// The dashboard never calls it while rendering; it backs the resolve command.
func ProbeEnvironment(ctx context.Context, client *http.Client, url string) (ServiceEnvironment, error) {
	if client == nil {
		client = &http.Client{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ServiceEnvironment{}, &TransportError{Message: err.Error()}
	}

	res, err := client.Do(req)
	if err != nil {
		return ServiceEnvironment{}, &TransportError{Message: err.Error()}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return ServiceEnvironment{}, &RequestFailedError{StatusCode: res.StatusCode, Reason: reasonPhrase(res)}
	}

	var env ServiceEnvironment
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return ServiceEnvironment{}, &TransportError{Message: err.Error()}
	}

	return env, nil
}
