package importService

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var maxPayloadBytes = 32 << 20

var ErrPayloadTooLarge = errors.New("stats payload too large")

// FetchStats downloads a stats export, either the site feed or a Discord
// attachment URL.
func FetchStats(requestUrl string, timeout time.Duration) ([]byte, error) {
	client := &http.Client{Timeout: timeout}
	req, err := http.NewRequest(http.MethodGet, requestUrl, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching stats: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(maxPayloadBytes)+1))
	if err != nil {
		return nil, fmt.Errorf("error reading stats: %v", err)
	}
	if len(body) > maxPayloadBytes {
		return nil, fmt.Errorf("%w: over %d bytes", ErrPayloadTooLarge, maxPayloadBytes)
	}
	return body, nil
}
