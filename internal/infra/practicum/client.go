package practicum

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"homework_status_bot/internal/domain/homework"

	"github.com/sirupsen/logrus"
)

const defaultEndpoint = "https://practicum.yandex.ru/api/user_api/homework_statuses/"

// Config controls how the client reaches the homework status API.
type Config struct {
	Endpoint   string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logrus.Entry
}

// Client fetches homework statuses from the Practicum API.
type Client struct {
	endpoint   string
	token      string
	httpClient httpDoer
	logger     *logrus.Entry
}

// NewClient constructs a client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		endpoint:   normalizeEndpoint(cfg.Endpoint),
		token:      cfg.Token,
		httpClient: resolveHTTPClient(cfg.HTTPClient, cfg.Timeout),
		logger:     resolveLogger(cfg.Logger),
	}
}

// FetchStatuses requests statuses changed since from (Unix seconds).
// Only a 200 response yields a payload; everything else is a fetch error.
func (c *Client) FetchStatuses(ctx context.Context, from int64) (homework.Payload, error) {
	req, err := c.buildRequest(ctx, from)
	if err != nil {
		return nil, homework.WrapError(homework.KindFetch, err, "не удалось сформировать запрос к API")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, homework.WrapError(homework.KindFetch, err, "эндпоинт API недоступен")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// The body only goes to the log: it may be an HTML page or carry request IDs.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"body":        strings.TrimSpace(string(body)),
		}).Warn("Homework status API returned an unexpected status")
		return nil, homework.NewError(homework.KindFetch, "Сбой работы. Ответ сервера %d", resp.StatusCode)
	}

	var payload homework.Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, homework.WrapError(homework.KindValidation, err, "ответ API не является JSON-объектом")
	}
	return payload, nil
}

func (c *Client) buildRequest(ctx context.Context, from int64) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	q.Set("from_date", strconv.FormatInt(from, 10))
	req.URL.RawQuery = q.Encode()

	req.Header.Set("Authorization", "OAuth "+c.token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}
