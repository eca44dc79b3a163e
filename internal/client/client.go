package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shaiso/Outreach/internal/domain"
)

// DefaultBaseURL — адрес backend'а по умолчанию.
const DefaultBaseURL = "http://localhost:5000/api"

// Сообщения на случай, если backend не прислал свой message.
const (
	msgSaveFailed     = "Failed to save flow"
	msgScheduleFailed = "Failed to schedule email"
	msgFetchLists     = "Failed to fetch lists"
	msgCreateList     = "Failed to create new list"
)

// --- Response types (дублируются из api/dto.go, клиент не импортирует internal/api) ---

// SaveFlowResponse — ответ POST /save-flow.
type SaveFlowResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
	Nodes   int    `json:"nodes"`
	Edges   int    `json:"edges"`

	Unreachable []string `json:"unreachable,omitempty"`
}

// ScheduleEmailResponse — ответ POST /schedule-email.
type ScheduleEmailResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
	SendAt  string `json:"send_at"`
}

// FlowResponse — сохранённый граф из API.
type FlowResponse struct {
	ID        string       `json:"id"`
	Graph     domain.Graph `json:"graph"`
	UpdatedAt string       `json:"updated_at"`
}

// EmailResponse — запланированное письмо из API.
type EmailResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	SendAt    string `json:"send_at"`
	Status    string `json:"status"`
	Attempts  int    `json:"attempts"`
	Error     string `json:"error,omitempty"`
	SentAt    string `json:"sent_at,omitempty"`
	CreatedAt string `json:"created_at"`
}

// DispatchResponse — одна строка плана отправки.
type DispatchResponse struct {
	NodeID     string `json:"node_id"`
	Email      string `json:"email"`
	Subject    string `json:"subject"`
	Time       string `json:"time"`
	Overridden bool   `json:"overridden"`
}

// ListEmailsOpts — параметры фильтрации писем.
type ListEmailsOpts struct {
	Status string
	Limit  int
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIError — ответ backend'а с кодом >= 400.
//
// Error() возвращает message backend'а без изменений.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error реализует интерфейс error.
func (e *APIError) Error() string {
	return e.Message
}

// --- Client ---

// Client — HTTP-клиент для Outreach API.
//
// Client реализует orchestrator.FlowSaver и orchestrator.EmailScheduler.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Editor contracts ---

// SaveFlow сохраняет граф (POST /save-flow).
func (c *Client) SaveFlow(ctx context.Context, g domain.Graph) error {
	_, err := c.SaveFlowWithResponse(ctx, g)
	return err
}

// SaveFlowWithResponse сохраняет граф и возвращает ответ backend'а.
func (c *Client) SaveFlowWithResponse(ctx context.Context, g domain.Graph) (*SaveFlowResponse, error) {
	var resp SaveFlowResponse
	err := c.doJSON(ctx, http.MethodPost, "/save-flow", g, &resp, msgSaveFailed)
	return &resp, err
}

// ScheduleEmail передаёт письмо на планирование (POST /schedule-email).
func (c *Client) ScheduleEmail(ctx context.Context, req domain.EmailRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/schedule-email", req, nil, msgScheduleFailed)
}

// ListLists возвращает списки лидов (GET /lists).
func (c *Client) ListLists(ctx context.Context) ([]domain.LeadList, error) {
	var lists []domain.LeadList
	err := c.doJSON(ctx, http.MethodGet, "/lists", nil, &lists, msgFetchLists)
	return lists, err
}

// CreateList создаёт список лидов (POST /lists).
func (c *Client) CreateList(ctx context.Context, name string) (*domain.LeadList, error) {
	var list domain.LeadList
	body := map[string]string{"name": name}
	err := c.doJSON(ctx, http.MethodPost, "/lists", body, &list, msgCreateList)
	return &list, err
}

// --- Admin endpoints ---

// GetFlow возвращает сохранённый граф.
func (c *Client) GetFlow(ctx context.Context, id string) (*FlowResponse, error) {
	var flow FlowResponse
	err := c.data(ctx, http.MethodGet, "/flows/"+url.PathEscape(id), nil, &flow)
	return &flow, err
}

// Plan возвращает план отправки, вычисленный backend'ом.
func (c *Client) Plan(ctx context.Context, g domain.Graph) ([]DispatchResponse, error) {
	var plan []DispatchResponse
	err := c.list(ctx, http.MethodPost, "/plan", nil, g, &plan)
	return plan, err
}

// ListEmails возвращает запланированные письма.
func (c *Client) ListEmails(ctx context.Context, opts ListEmailsOpts) ([]EmailResponse, error) {
	params := url.Values{}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}

	var emails []EmailResponse
	err := c.list(ctx, http.MethodGet, "/emails", params, nil, &emails)
	return emails, err
}

// --- HTTP helpers ---

// doJSON выполняет запрос с телом ответа без обёртки.
func (c *Client) doJSON(ctx context.Context, method, path string, body, result any, fallback string) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkError(resp, fallback); err != nil {
		return err
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// data выполняет запрос с ответом вида {"data": ...}.
func (c *Client) data(ctx context.Context, method, path string, body, result any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkError(resp, ""); err != nil {
		return err
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

// list выполняет запрос с ответом вида {"data": [...], "total": N}.
func (c *Client) list(ctx context.Context, method, path string, params url.Values, body, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkError(resp, ""); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return json.Unmarshal(lr.Data, result)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

// checkError превращает ответ с кодом >= 400 в *APIError.
// Если тело не содержит message, используется fallback.
func checkError(resp *http.Response, fallback string) error {
	if resp.StatusCode < 400 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode, Message: fallback}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err == nil {
		apiErr.Code = er.Code
		if er.Message != "" {
			apiErr.Message = er.Message
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("API error: HTTP %d", resp.StatusCode)
	}
	return apiErr
}
