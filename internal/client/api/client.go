package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/iudanet/clinicsync/pkg/api"
)

const defaultTimeout = 30 * time.Second

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string

	mu    sync.RWMutex
	token string
}

// Option настраивает Client
type Option func(*Client)

// WithTimeout задает таймаут HTTP запросов
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithToken задает access token для авторизованных запросов
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// NewClient создает новый API клиент
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken заменяет access token
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) accessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Register регистрирует нового оператора
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
	var resp api.RegisterResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/register", "", req, &resp)
	if err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// GetSalt получает public_salt оператора
func (c *Client) GetSalt(ctx context.Context, username string) (*api.SaltResponse, error) {
	var resp api.SaltResponse
	path := "/api/v1/auth/salt/" + url.PathEscape(username)
	err := c.doRequest(ctx, http.MethodGet, path, "", nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("get salt request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет аутентификацию оператора
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", "", req, &resp)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Refresh обменивает refresh token на новую пару токенов
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/refresh", refreshToken, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	return &resp, nil
}

// Logout отзывает refresh токены оператора
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/logout", c.accessToken(), nil, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// Health проверяет доступность сервера
func (c *Client) Health(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodGet, "/api/v1/health", "", nil, nil)
}

// Online сообщает, отвечает ли сервер. Используется как признак наличия сети.
func (c *Client) Online(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return c.Health(ctx) == nil
}

// LookupPatientsByPhone ищет пациентов по номеру телефона
func (c *Client) LookupPatientsByPhone(ctx context.Context, phone string) ([]api.Patient, error) {
	var resp api.PatientsResponse
	path := "/api/v1/patients?phone=" + url.QueryEscape(phone)
	if err := c.doRequest(ctx, http.MethodGet, path, c.accessToken(), nil, &resp); err != nil {
		return nil, fmt.Errorf("lookup patients failed: %w", err)
	}
	return resp.Patients, nil
}

// RegisterPatientAndConsultation регистрирует пациента (или находит по телефону)
// и создает для него консультацию в статусе pending
func (c *Client) RegisterPatientAndConsultation(ctx context.Context, req api.RegisterPatientRequest) (*api.RegisterPatientResponse, error) {
	var resp api.RegisterPatientResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/patients/register", c.accessToken(), req, &resp); err != nil {
		return nil, fmt.Errorf("register patient failed: %w", err)
	}
	return &resp, nil
}

// UpdatePatient частично обновляет карточку пациента
func (c *Client) UpdatePatient(ctx context.Context, id string, update api.PatientUpdate) (*api.Patient, error) {
	var resp api.Patient
	path := "/api/v1/patients/" + url.PathEscape(id)
	if err := c.doRequest(ctx, http.MethodPatch, path, c.accessToken(), update, &resp); err != nil {
		return nil, fmt.Errorf("update patient %s failed: %w", id, err)
	}
	return &resp, nil
}

// GetConsultation возвращает консультацию вместе с пациентом
func (c *Client) GetConsultation(ctx context.Context, id string) (*api.Consultation, error) {
	var resp api.Consultation
	path := "/api/v1/consultations/" + url.PathEscape(id)
	if err := c.doRequest(ctx, http.MethodGet, path, c.accessToken(), nil, &resp); err != nil {
		return nil, fmt.Errorf("get consultation %s failed: %w", id, err)
	}
	return &resp, nil
}

// UpdateConsultation частично обновляет консультацию
func (c *Client) UpdateConsultation(ctx context.Context, id string, update api.ConsultationUpdate) (*api.Consultation, error) {
	var resp api.Consultation
	path := "/api/v1/consultations/" + url.PathEscape(id)
	if err := c.doRequest(ctx, http.MethodPatch, path, c.accessToken(), update, &resp); err != nil {
		return nil, fmt.Errorf("update consultation %s failed: %w", id, err)
	}
	return &resp, nil
}

// CreateConsultation создает консультацию для существующего пациента
func (c *Client) CreateConsultation(ctx context.Context, req api.CreateConsultationRequest) (*api.Consultation, error) {
	var resp api.Consultation
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/consultations", c.accessToken(), req, &resp); err != nil {
		return nil, fmt.Errorf("create consultation failed: %w", err)
	}
	return &resp, nil
}

// ListConsultations возвращает консультации пациента и/или с заданным статусом
func (c *Client) ListConsultations(ctx context.Context, patientID, status string) ([]api.Consultation, error) {
	q := url.Values{}
	if patientID != "" {
		q.Set("patient_id", patientID)
	}
	if status != "" {
		q.Set("status", status)
	}
	path := "/api/v1/consultations"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp api.ConsultationsResponse
	if err := c.doRequest(ctx, http.MethodGet, path, c.accessToken(), nil, &resp); err != nil {
		return nil, fmt.Errorf("list consultations failed: %w", err)
	}
	return resp.Consultations, nil
}

// ListGuides возвращает все памятки с переводами
func (c *Client) ListGuides(ctx context.Context) ([]api.Guide, error) {
	var resp api.GuidesResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/guides", c.accessToken(), nil, &resp); err != nil {
		return nil, fmt.Errorf("list guides failed: %w", err)
	}
	return resp.Guides, nil
}

// SendMessage передает сообщение WhatsApp серверу для отправки через relay
func (c *Client) SendMessage(ctx context.Context, req api.MessageRequest) (*api.MessageResponse, error) {
	var resp api.MessageResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/messages", c.accessToken(), req, &resp); err != nil {
		return nil, fmt.Errorf("send message failed: %w", err)
	}
	return &resp, nil
}

// doRequest выполняет HTTP запрос. Неуспешный статус возвращается как *StatusError.
func (c *Client) doRequest(ctx context.Context, method, path, bearer string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			statusErr.Message = errResp.Message
		}
		return statusErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
