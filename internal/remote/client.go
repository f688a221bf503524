package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"achieveTracker/internal/logger"
)

// Client — HTTP-клиент удалённого документного сервиса (json-server-совместимого).
// Аутентификации на этом уровне нет: все вызовы скоупятся параметром userId.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries uint
}

func NewClient(baseURL string, timeout time.Duration, maxRetries uint) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
	}
}

func (c *Client) Tasks() *TasksClient {
	return &TasksClient{c: c}
}

func (c *Client) Habits() *HabitsClient {
	return &HabitsClient{c: c}
}

// do выполняет запрос с ретраями по транспортным ошибкам.
// 404 и прочие 4xx не ретраятся; отмена контекста прерывает запрос.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	start := time.Now()
	op := method + " " + path

	attempt := func() error {
		var reader io.Reader
		if body != nil {
			encoded, err := json.Marshal(body)
			if err != nil {
				return backoff.Permanent(fmt.Errorf("сериализация тела: %w", err))
			}
			reader = bytes.NewReader(encoded)
		}

		u := c.baseURL + path
		if len(query) > 0 {
			u += "?" + query.Encode()
		}

		req, err := http.NewRequestWithContext(ctx, method, u, reader)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("создание запроса: %w", err))
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &TransportError{Op: op, Err: err}
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(ErrNotFound)
		case resp.StatusCode >= 500:
			return &TransportError{Op: op, Err: fmt.Errorf("статус %d", resp.StatusCode)}
		case resp.StatusCode >= 400:
			return backoff.Permanent(fmt.Errorf("%s: статус %d", op, resp.StatusCode))
		}

		if out == nil {
			io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("разбор ответа: %w", err)}
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.maxRetries)),
		ctx,
	)

	err := backoff.Retry(attempt, policy)
	if err != nil {
		return err
	}

	if time.Since(start) > 3*time.Second {
		logger.Warn("Remote: Медленный запрос",
			zap.String("op", op),
			zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func userQuery(userID int64) url.Values {
	return url.Values{"userId": []string{fmt.Sprintf("%d", userID)}}
}
