package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ToaaMusic/ai-main/internal/config"
	"github.com/ToaaMusic/ai-main/internal/middleware"
	"github.com/ToaaMusic/ai-main/internal/models"
	"github.com/ToaaMusic/ai-main/internal/pricing"
	"github.com/ToaaMusic/ai-main/internal/ratelimit"
	"github.com/ToaaMusic/ai-main/internal/search"
	"github.com/ToaaMusic/ai-main/internal/services"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Meta    *Meta           `json:"meta"`
}

// newTestApp wires the API without a database; only routes that fail or
// finish before touching it can be exercised.
func newTestApp(t *testing.T, limiter ratelimit.Limiter) (*fiber.App, services.ImageStore) {
	t.Helper()

	store, err := services.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{JWTSecret: "test-secret", MaxUploadBytes: 1 << 20}
	h := New(nil, cfg, zap.NewNop(), pricing.Default, store, search.NewIndexer(nil))

	if limiter == nil {
		mem := ratelimit.NewMemoryLimiter(1000, time.Minute)
		t.Cleanup(mem.Stop)
		limiter = mem
	}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
	h.Routes(app, limiter)
	return app, store
}

func call(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func TestEstimatePrice(t *testing.T) {
	app, _ := newTestApp(t, nil)

	status, env := call(t, app, http.MethodPost, "/api/ai-pricing",
		`{"brand":"Apple","condition":"全新","originalPrice":10000,"usageDuration":0,"category":"电子产品"}`)
	require.Equal(t, fiber.StatusOK, status, env.Error)
	assert.True(t, env.Success)

	var res pricing.Result
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 9887.5, res.EstimatedPrice)
	assert.Equal(t, pricing.PriceRange{Min: 8898.75, Max: 10876.25, Recommended: 9887.5}, res.PriceRange)
	assert.Equal(t, 9.5, res.Factors.BrandValue)
	assert.Equal(t, 8.5, res.Factors.MarketDemand)
	assert.Contains(t, res.Explanation, "¥9887.5")
}

func TestEstimatePrice_InvalidInput(t *testing.T) {
	app, _ := newTestApp(t, nil)

	tests := []struct {
		name, body, wantErr string
	}{
		{"zero price", `{"brand":"Apple","condition":"全新","originalPrice":0,"usageDuration":0,"category":"电子产品"}`, "invalid originalPrice: must be greater than 0"},
		{"negative usage", `{"brand":"Apple","condition":"全新","originalPrice":100,"usageDuration":-1,"category":"电子产品"}`, "invalid usageDuration: must not be negative"},
		{"missing usage", `{"brand":"Apple","condition":"全新","originalPrice":100,"category":"电子产品"}`, "invalid usageDuration: is required"},
		{"fractional usage", `{"brand":"Apple","condition":"全新","originalPrice":100,"usageDuration":1.5,"category":"电子产品"}`, "invalid usageDuration: must be a whole number of months"},
		{"malformed json", `{"brand":`, "invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := call(t, app, http.MethodPost, "/api/ai-pricing", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantErr, env.Error)
		})
	}
}

func TestEstimatePrice_RateLimited(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(1, time.Hour)
	defer limiter.Stop()
	app, _ := newTestApp(t, limiter)

	body := `{"brand":"Sony","condition":"八成新","originalPrice":2000,"usageDuration":6,"category":"电子产品"}`
	status, _ := call(t, app, http.MethodPost, "/api/ai-pricing", body)
	assert.Equal(t, fiber.StatusOK, status)

	status, env := call(t, app, http.MethodPost, "/api/ai-pricing", body)
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.False(t, env.Success)
}

func TestServeImage(t *testing.T) {
	app, store := newTestApp(t, nil)
	require.NoError(t, store.Put(context.Background(), "products/1/photo.png", strings.NewReader("fake-png"), 8, "image/png"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/images/products/1/photo.png", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, "fake-png", string(body))

	status, env := call(t, app, http.MethodGet, "/api/images/products/1/missing.png", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "image not found", env.Error)
}

func authHeader(t *testing.T, userID int, role models.Role) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &middleware.JWTClaims{
		UserID:   userID,
		Username: "tester",
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return "Bearer " + signed
}

func TestUploadProductImage_RejectsNonImageBytes(t *testing.T) {
	app, _ := newTestApp(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="file"; filename="x.html"`},
		"Content-Type":        {"image/png"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("<!DOCTYPE html><html><script>alert(document.cookie)</script></html>"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/products/1/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", authHeader(t, 7, models.RoleUser))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "only JPEG, PNG, GIF and WebP images are allowed", env.Error)
}

func TestServeImage_NoSniff(t *testing.T) {
	app, store := newTestApp(t, nil)
	require.NoError(t, store.Put(context.Background(), "products/1/page.html", strings.NewReader("<html></html>"), 13, "image/png"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/images/products/1/page.html", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/octet-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestPurchase_DealPriceNeedsAdmin(t *testing.T) {
	app, _ := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/products/1/purchase", strings.NewReader(`{"dealPrice":0.01}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authHeader(t, 7, models.RoleUser))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "only admins can set dealPrice", env.Error)
}

func TestRequestValidation(t *testing.T) {
	app, _ := newTestApp(t, nil)

	tests := []struct {
		name, method, path, body string
		wantStatus               int
		wantErr                  string
	}{
		{"bad parentId", http.MethodGet, "/api/categories?parentId=abc", "", 400, "invalid parentId"},
		{"bad category id", http.MethodGet, "/api/categories/0", "", 400, "invalid category ID"},
		{"bad sortBy", http.MethodGet, "/api/products?sortBy=title", "", 400, "sortBy must be createdAt or price"},
		{"bad condition filter", http.MethodGet, "/api/products?condition=mint", "", 400, "invalid condition"},
		{"bad status filter", http.MethodGet, "/api/products?status=gone", "", 400, "invalid status"},
		{"bad minPrice", http.MethodGet, "/api/products?minPrice=cheap", "", 400, "invalid minPrice"},
		{"missing title", http.MethodPost, "/api/products", `{"userPrice":10,"categoryId":1,"condition":"全新","sellerId":1}`, 400, "title is required"},
		{"unknown condition", http.MethodPost, "/api/products", `{"title":"x","userPrice":10,"categoryId":1,"condition":"mint","sellerId":1}`, 400, "condition must be one of 全新, 九成新, 八成新, 七成新, 六成新"},
		{"non-positive price", http.MethodPost, "/api/products", `{"title":"x","userPrice":0,"categoryId":1,"condition":"全新","sellerId":1}`, 400, "userPrice is required"},
		{"anonymous without seller", http.MethodPost, "/api/products", `{"title":"x","userPrice":10,"categoryId":1,"condition":"new"}`, 401, "authentication required"},
		{"register bad email", http.MethodPost, "/api/auth/register", `{"username":"li","email":"nope","password":"secret1"}`, 400, "email must be a valid email address"},
		{"update needs auth", http.MethodPut, "/api/products/1", `{"title":"x"}`, 401, "missing authorization header"},
		{"admin needs auth", http.MethodGet, "/api/admin/users", "", 401, "missing authorization header"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := call(t, app, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantErr, env.Error)
		})
	}
}

func TestHealth_NoDatabase(t *testing.T) {
	app, _ := newTestApp(t, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "disabled", body["database"])
}

func TestSuccessWithMeta_Pages(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return SuccessWithMeta(c, []int{}, 21, 2, 10)
	})

	status, env := call(t, app, http.MethodGet, "/", "")
	assert.Equal(t, fiber.StatusOK, status)
	require.NotNil(t, env.Meta)
	assert.Equal(t, Meta{Total: 21, Page: 2, Limit: 10, Pages: 3}, *env.Meta)
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })
	app.Get("/boom", func(c *fiber.Ctx) error { return assert.AnError })

	status, env := call(t, app, http.MethodGet, "/teapot", "")
	assert.Equal(t, fiber.StatusTeapot, status)
	assert.Equal(t, "short and stout", env.Error)

	status, env = call(t, app, http.MethodGet, "/boom", "")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Internal Server Error", env.Error)
}

func TestValidator_Condition(t *testing.T) {
	v := NewValidator()

	ok := models.CreateProductRequest{Title: "t", UserPrice: 1, CategoryID: 1, Condition: "like-new-90"}
	assert.NoError(t, v.Struct(ok))

	bad := ok
	bad.Condition = "九成"
	assert.Error(t, v.Struct(bad))
}

func TestMergePricingInputs(t *testing.T) {
	brand := "Apple"
	orig := 5000.0
	p := &models.Product{Title: "iPhone", Brand: &brand, Condition: "全新", OriginalPrice: &orig, UsageDuration: 3, CategoryID: 2}

	newBrand := "Huawei"
	usage := 12
	got := mergePricingInputs(p, &models.UpdateProductRequest{Brand: &newBrand, UsageDuration: &usage})

	assert.Equal(t, productInputs{
		title: "iPhone", brand: "Huawei", condition: "全新",
		originalPrice: 5000, usage: 12, categoryID: 2,
	}, got)
	assert.True(t, pricingInputsChanged(&models.UpdateProductRequest{Brand: &newBrand}))
	assert.False(t, pricingInputsChanged(&models.UpdateProductRequest{}))
}
